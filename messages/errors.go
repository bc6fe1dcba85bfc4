package messages

import (
	"fmt"

	"github.com/VTGare/gumi"
)

type IncorrectCmd struct {
	Name    string
	Usage   string
	Example string
}

func (cmd *IncorrectCmd) Error() string {
	return fmt.Sprintf("Command `%v` was used incorrectly", cmd.Name)
}

func ErrIncorrectCmd(cmd *gumi.Command) error {
	return &IncorrectCmd{
		Name:    cmd.Name,
		Usage:   cmd.Usage,
		Example: cmd.Example,
	}
}

// UserErr is a user-facing error. Its message is shown as a reply to the
// triggering command, the wrapped error only reaches the log.
type UserErr struct {
	msg string
	err error
}

func (ue *UserErr) Error() string {
	return ue.msg
}

func (ue *UserErr) Unwrap() error {
	return ue.err
}

func newUserError(msg string, errs ...error) *UserErr {
	var err error
	if len(errs) > 0 {
		err = errs[0]
	}

	return &UserErr{
		msg: msg,
		err: err,
	}
}

func ErrGuildNotFound(err error, id string) error {
	return newUserError(
		fmt.Sprintf("Failed to fetch guild information. Guild ID: %v", id),
		err,
	)
}

func ErrStatsAlreadyConfigured() error {
	return newUserError(
		"Stats channels already exist on this server. Run `kz!stats-remove` first if you want to recreate them.",
	)
}

func ErrStatsNotConfigured() error {
	return newUserError(
		"Stats channels are not set up on this server. Run `kz!stats-setup` to create them.",
	)
}

func ErrStatsCreationFailed(slot string, err error) error {
	return newUserError(
		fmt.Sprintf(
			"Failed to create the `%v` stats channel. Channels created before the failure were left in place and have to be removed by hand. %v",
			slot,
			"Make sure the bot has the Manage Channels permission and try again.",
		),
		err,
	)
}
