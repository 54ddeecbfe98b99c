// Package bot connects the handout handlers to Telegram.
//
// The Dispatcher consumes updates from a long-polling channel and handles them
// one at a time: /start and /help get their fixed replies, any other text is a
// search term. Replies go through a Conversation bound to the update's chat.
package bot
