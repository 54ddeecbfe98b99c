// Package handout_tools exposes the handout search as MCP tools.
//
// Tools:
//   - handout_search: runs a search and returns the replies the bot would send
//   - handout_semesters: lists the semesters used to group multi-result searches
package handout_tools
