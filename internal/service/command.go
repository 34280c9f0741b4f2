// internal/service/command.go
package service

import "strings"

// defaultPIN is substituted when the selected SIM has no PIN configured.
const defaultPIN = "0000"

// defaultFlexyTemplates are the built-in per-operator flexy command
// patterns, used unless an administrator-configured override exists.
var defaultFlexyTemplates = map[string]string{
	"mobilis": "*610*{pin}*{phone}*{amount}#",
	"djezzy":  "*720*{pin}*{phone}*{amount}#",
	"ooredoo": "*100*{pin}*{phone}*{amount}#",
}

// renderCommand substitutes the {phone}, {amount}/{price} and {pin} tokens
// into a command template. The command is an opaque string to everything
// downstream of this function.
func renderCommand(template, phoneNumber, amount, pin string) string {
	if pin == "" {
		pin = defaultPIN
	}
	return strings.NewReplacer(
		"{phone}", phoneNumber,
		"{amount}", amount,
		"{price}", amount,
		"{pin}", pin,
	).Replace(template)
}
