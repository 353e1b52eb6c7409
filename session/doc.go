// Package session is a synchronous façade over the chatgpt client.
//
// A [Session] exposes one method per API operation. Plain calls block until
// the decoded response arrives. Streaming calls relay events to a [Listener]
// from a background goroutine and hand back an [EventSource] to cancel or
// await the relay. [Session.ChatText] resolves a [Future] with the complete
// reply reassembled from a chat stream.
//
//	s := session.NewFactory(session.Configuration{APIKey: key}).Open()
//
//	text, err := s.ChatText(ctx, chatgpt.NewChatRequest(chatgpt.ChatMessage{
//		Role:    chatgpt.ChatRoleUser,
//		Content: "Write a haiku about gophers.",
//	})).Wait(ctx)
package session
