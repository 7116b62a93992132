//go:build rtmidi

package cli

import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
