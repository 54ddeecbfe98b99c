package handout

import "context"

const (
	textHello = "Hello !"
	textIntro = "I Can Help You Find Handouts For Courses. Type /help For Instructions."
	textHelp  = "Type the Course Code (preferred) or Course Name to get the Handout for the particular course." +
		"\n\nIncase of Multiple Results, please alter the Search Term accordingly to get the exact file." +
		"\n\nPS : You Can Click On A Search Result To Copy It Onto Your Clipboard"
)

// StartReplies returns the greeting sent for /start.
func StartReplies() []string {
	return []string{textHello, textIntro}
}

// HelpReply returns the usage text sent for /help.
func HelpReply() string {
	return textHelp
}

// HandleStart greets the user.
func HandleStart(ctx context.Context, conv Conversation) error {
	for _, text := range StartReplies() {
		if _, err := conv.Reply(ctx, text); err != nil {
			return err
		}
	}
	return nil
}

// HandleHelp explains how to search.
func HandleHelp(ctx context.Context, conv Conversation) error {
	_, err := conv.Reply(ctx, HelpReply())
	return err
}
