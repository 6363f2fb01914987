// Package memory stores named facts an agent should keep across runs.
//
// Facts persist as a JSON object on disk and are rendered into the agent's
// system prompt through PromptContent. Conversation history is not stored
// here; callers own the message list.
package memory
