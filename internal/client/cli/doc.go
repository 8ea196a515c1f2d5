// Package cli provides the interactive docchat command-line client.
//
// It wires configuration, the local state database, the token provider, the
// HTTP gateway and the client services, and runs a REPL on top of them.
// Typical flow: restore the persisted session (or run the device sign-in),
// pick or start a chat, ask questions, and manage documents.
//
// Key features:
//   - Login / Logout via the OAuth2 device authorization grant
//   - Chat: send, web search and image generation toggles, image attachments,
//     chat history, citation links
//   - Documents: stage, upload in batches, delete, processing status
//   - Admin: per-user document limits, user deletion
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
