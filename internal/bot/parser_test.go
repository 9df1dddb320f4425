package bot

import (
	"testing"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Command
		wantErr bool
	}{
		{name: "start with slash", text: "/start", want: Command{Name: CommandStart}},
		{name: "start with bot suffix", text: "/start@UpdateBot", want: Command{Name: CommandStart}},
		{name: "add", text: "add https://foo.bar", want: Command{Name: CommandAdd, Arg: "https://foo.bar"}},
		{name: "add upper case", text: "ADD https://foo.bar/page", want: Command{Name: CommandAdd, Arg: "https://foo.bar/page"}},
		{name: "add with extra spaces", text: "  add   http://example.com  ", want: Command{Name: CommandAdd, Arg: "http://example.com"}},
		{name: "remove", text: "remove https://foo.bar", want: Command{Name: CommandRemove, Arg: "https://foo.bar"}},
		{name: "remove keeps argument verbatim", text: "/remove not-a-url", want: Command{Name: CommandRemove, Arg: "not-a-url"}},
		{name: "print", text: "print", want: Command{Name: CommandPrint}},
		{name: "check", text: "Check", want: Command{Name: CommandCheck}},
		{name: "status", text: "/status", want: Command{Name: CommandStatus}},
		{name: "print prefix", text: "printall", want: Command{Name: CommandPrint}},
		{name: "print prefix upper case", text: "PRINTURLS", want: Command{Name: CommandPrint}},
		{name: "check prefix", text: "CHECKNOW", want: Command{Name: CommandCheck}},
		{name: "check with trailing words", text: "Check please", want: Command{Name: CommandCheck}},
		{name: "add needs a space", text: "addhttps://foo.bar", wantErr: true},
		{name: "remove needs a space", text: "removehttps://foo.bar", wantErr: true},
		{name: "help", text: "help", want: Command{Name: CommandHelp}},
		{name: "add without url", text: "add", wantErr: true},
		{name: "add with ftp url", text: "add ftp://foo.bar", wantErr: true},
		{name: "add without host", text: "add https://", wantErr: true},
		{name: "remove without url", text: "remove   ", wantErr: true},
		{name: "unknown", text: "frobnicate", wantErr: true},
		{name: "blank", text: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.text, "UpdateBot")
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *common.ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_OtherBot(t *testing.T) {
	_, err := ParseCommand("/start@SomeOtherBot", "UpdateBot")
	assert.ErrorIs(t, err, errAddressedElsewhere)
}

func TestParseCommand_SuffixWithoutKnownUsername(t *testing.T) {
	got, err := ParseCommand("/print@AnyBot", "")
	require.NoError(t, err)
	assert.Equal(t, CommandPrint, got.Name)
}
