// Package cli is a small hand-rolled flag parser and help-page renderer,
// used instead of the standard library's flag package so --long/-short
// aliases, "=value" and "value" forms, and terminal-width-aware wrapped
// help text all come for free.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"golang.org/x/term"
)

type IndentState struct {
	levels   []uint8
	baseUnit uint8
}

func NewIndentState() *IndentState {
	return &IndentState{levels: []uint8{0}, baseUnit: 4}
}

func (is *IndentState) AtLevel(level int) string {
	return strings.Repeat(" ", int(is.baseUnit*uint8(level)))
}

type Value interface {
	String() string
	Set(string) error
	Get() any
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error   { *v.p = s; return nil }
func (v *stringValue) String() string       { return *v.p }
func (v *stringValue) Get() any             { return *v.p }
func newStringValue(p *string) *stringValue { return &stringValue{p} }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	val, err := strconv.ParseBool(s)
	if err != nil && s != "" {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val || s == ""
	return nil
}
func (v *boolValue) String() string   { return strconv.FormatBool(*v.p) }
func (v *boolValue) Get() any         { return *v.p }
func newBoolValue(p *bool) *boolValue { return &boolValue{p} }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	args       []string
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
	}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(newStringValue(p), name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(newBoolValue(p), name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("flag name cannot be empty")
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	if _, ok := f.flags[name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", name))
	}
	f.flags[name] = flag
	if shorthand != "" {
		if _, ok := f.shorthands[shorthand]; ok {
			panic(fmt.Sprintf("shorthand flag redefined: %s", shorthand))
		}
		f.shorthands[shorthand] = flag
	}
}

func (f *FlagSet) Lookup(name string) *Flag { return f.flags[name] }

func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		if len(arg) < 2 || arg[0] != '-' {
			f.args = append(f.args, arg)
			continue
		}
		if arg == "--" {
			f.args = append(f.args, arguments[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "--") {
			if err := f.parseLongFlag(arg, arguments, &i); err != nil {
				return err
			}
			continue
		}
		if err := f.parseShortFlag(arg, arguments, &i); err != nil {
			return err
		}
	}
	return nil
}

func (f *FlagSet) parseLongFlag(arg string, arguments []string, i *int) error {
	parts := strings.SplitN(arg[2:], "=", 2)
	name := parts[0]
	if name == "" {
		return fmt.Errorf("empty flag name")
	}
	flag, ok := f.flags[name]
	if !ok {
		return fmt.Errorf("unknown flag: --%s", name)
	}
	if len(parts) == 2 {
		return flag.Value.Set(parts[1])
	}
	if _, isBool := flag.Value.(*boolValue); isBool {
		return flag.Value.Set("")
	}
	if *i+1 >= len(arguments) {
		return fmt.Errorf("flag needs an argument: --%s", name)
	}
	*i++
	return flag.Value.Set(arguments[*i])
}

func (f *FlagSet) parseShortFlag(arg string, arguments []string, i *int) error {
	name := arg[1:]
	if strings.Contains(name, "=") {
		name = strings.SplitN(name, "=", 2)[0]
	}
	if flag, ok := f.flags[name]; ok {
		parts := strings.SplitN(arg[1:], "=", 2)
		if len(parts) == 2 {
			return flag.Value.Set(parts[1])
		}
		if _, isBool := flag.Value.(*boolValue); isBool {
			return flag.Value.Set("")
		}
		if *i+1 >= len(arguments) {
			return fmt.Errorf("flag needs an argument: -%s", name)
		}
		*i++
		return flag.Value.Set(arguments[*i])
	}

	shorthand := arg[1:2]
	flag, ok := f.shorthands[shorthand]
	if !ok {
		return fmt.Errorf("unknown shorthand flag: -%s", shorthand)
	}
	if _, isBool := flag.Value.(*boolValue); isBool {
		return flag.Value.Set("")
	}
	value := arg[2:]
	if value == "" {
		if *i+1 >= len(arguments) {
			return fmt.Errorf("flag needs an argument: -%s", shorthand)
		}
		*i++
		value = arguments[*i]
	}
	return flag.Value.Set(value)
}

// App is a named command with a FlagSet and, once Run parses it, an
// Action invoked with the remaining positional arguments.
type App struct {
	Name        string
	Synopsis    string
	Description string
	Authors     []string
	BuildTime   int64 // unix seconds; 0 means unknown and the help page omits it
	FlagSet     *FlagSet
	Action      func(args []string) error
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name)}
}

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.generateUsagePage(os.Stderr)
		return err
	}
	if help {
		a.generateHelpPage(os.Stdout)
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

func (a *App) generateUsagePage(w *os.File) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Usage: %s <options> <input.mc>\n", a.Name)
	fmt.Fprintf(&sb, "Run '%s --help' for all available options and flags.\n", a.Name)
	fmt.Fprint(w, sb.String())
}

func (a *App) generateHelpPage(w *os.File) {
	var sb strings.Builder
	termWidth := getTerminalWidth()
	indent := NewIndentState()

	if len(a.Authors) > 0 {
		fmt.Fprintf(&sb, "%s%s\n", indent.AtLevel(1), strings.Join(a.Authors, ", "))
	}
	if a.BuildTime != 0 {
		built := strftime.Format("%Y-%m-%d %H:%M:%S UTC", time.Unix(a.BuildTime, 0).UTC())
		fmt.Fprintf(&sb, "%sBuilt %s\n", indent.AtLevel(1), built)
	}

	if a.Synopsis != "" {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sSynopsis\n", indent.AtLevel(1))
		fmt.Fprintf(&sb, "%s%s %s\n", indent.AtLevel(2), a.Name, a.Synopsis)
	}

	if a.Description != "" {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sDescription\n", indent.AtLevel(1))
		fmt.Fprintf(&sb, "%s%s\n", indent.AtLevel(2), a.Description)
	}

	flags := a.sortedFlags()
	if len(flags) > 0 {
		maxFlagWidth, maxUsageWidth := 0, 0
		for _, flag := range flags {
			if w := len(formatFlagString(flag)); w > maxFlagWidth {
				maxFlagWidth = w
			}
			if w := len(flag.Usage); w > maxUsageWidth {
				maxUsageWidth = w
			}
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%sOptions\n", indent.AtLevel(1))
		for _, flag := range flags {
			formatFlagLine(&sb, flag, indent, termWidth, maxFlagWidth, maxUsageWidth)
		}
	}
	fmt.Fprint(w, sb.String())
}

func (a *App) sortedFlags() []*Flag {
	flags := make([]*Flag, 0, len(a.FlagSet.flags))
	for _, flag := range a.FlagSet.flags {
		flags = append(flags, flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })
	return flags
}

func formatFlagString(flag *Flag) string {
	var flagStr strings.Builder
	_, isBool := flag.Value.(*boolValue)
	if flag.Shorthand != "" {
		fmt.Fprintf(&flagStr, "-%s, --%s", flag.Shorthand, flag.Name)
	} else {
		fmt.Fprintf(&flagStr, "--%s", flag.Name)
	}
	if !isBool && flag.ExpectedType != "" {
		fmt.Fprintf(&flagStr, " <%s>", flag.ExpectedType)
	}
	return flagStr.String()
}

func formatFlagLine(sb *strings.Builder, flag *Flag, indent *IndentState, termWidth, maxFlagWidth, maxUsageWidth int) {
	leftPart := formatFlagString(flag)
	usageWidth := termWidth - len(indent.AtLevel(2)) - maxFlagWidth - 1
	if usageWidth < 10 {
		usageWidth = 10
	}
	lines := wrapText(flag.Usage, usageWidth)
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}
	fmt.Fprintf(sb, "%s%-*s %s\n", indent.AtLevel(2), maxFlagWidth, leftPart, first)
	wrapped := strings.Repeat(" ", maxFlagWidth+1)
	for _, line := range lines[1:] {
		fmt.Fprintf(sb, "%s%s%s\n", indent.AtLevel(2), wrapped, line)
	}
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	if width < 20 {
		return 20
	}
	return width
}

func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}
	var lines []string
	var current strings.Builder
	length := 0
	for _, word := range words {
		if length+len(word)+1 > maxWidth && length > 0 {
			lines = append(lines, current.String())
			current.Reset()
			length = 0
		}
		if length > 0 {
			current.WriteString(" ")
			length++
		}
		current.WriteString(word)
		length += len(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
