// Package handout implements the conversations of the handout bot: the
// /start and /help replies and the name search over the handout drive.
//
// Handlers never talk to a chat platform directly. They write to a
// Conversation, which the bot package backs with Telegram and the Transcript
// type backs with memory for the CLI, the MCP tools and tests.
//
// A search that matches several files is broken down by semester. Handout
// file names carry a suffix such as "SEM1 (2020-21)", and each configured
// Semester is searched separately and listed under its own header.
package handout
