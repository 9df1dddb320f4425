package bot

import (
	"strings"
	"unicode"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/urlhandler"
)

// CommandName identifies a chat command
type CommandName string

const (
	CommandStart  CommandName = "start"
	CommandAdd    CommandName = "add"
	CommandRemove CommandName = "remove"
	CommandPrint  CommandName = "print"
	CommandCheck  CommandName = "check"
	CommandStatus CommandName = "status"
	CommandHelp   CommandName = "help"
)

// Command is a parsed chat command. Arg holds the URL for add and remove.
type Command struct {
	Name CommandName
	Arg  string
}

// errAddressedElsewhere marks a command suffixed with another bot's name
var errAddressedElsewhere = common.NewError("command addressed to another bot")

// ParseCommand parses message text. The command word is case-insensitive
// and may carry a leading '/' and an "@botname" suffix. Malformed input is
// a *common.ParseError.
func ParseCommand(text, botUsername string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Command{}, common.NewParseError(text, "empty message")
	}

	word, rest := trimmed, ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i != -1 {
		word, rest = trimmed[:i], strings.TrimSpace(trimmed[i:])
	}
	word = strings.TrimPrefix(word, "/")
	if name, target, found := strings.Cut(word, "@"); found {
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return Command{}, errAddressedElsewhere
		}
		word = name
	}

	name := CommandName(strings.ToLower(word))
	// print and check also match as prefixes, so "printall" is print
	for _, prefixed := range []CommandName{CommandPrint, CommandCheck} {
		if strings.HasPrefix(string(name), string(prefixed)) {
			name = prefixed
		}
	}
	switch name {
	case CommandStart, CommandPrint, CommandCheck, CommandStatus, CommandHelp:
		return Command{Name: name}, nil
	case CommandAdd:
		if rest == "" {
			return Command{}, common.NewParseError(text, "add requires a URL")
		}
		if err := urlhandler.ValidateWatchURL(rest); err != nil {
			return Command{}, common.NewParseError(text, err.Error())
		}
		return Command{Name: name, Arg: rest}, nil
	case CommandRemove:
		if rest == "" {
			return Command{}, common.NewParseError(text, "remove requires a URL")
		}
		return Command{Name: name, Arg: rest}, nil
	default:
		return Command{}, common.NewParseError(text, "unknown command")
	}
}
