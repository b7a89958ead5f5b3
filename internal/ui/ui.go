package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/i18n"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	ReviewEmoji  = Accent.Sprint("🔎")
)

// Out is where the Print helpers write.
var Out io.Writer = os.Stdout

var activeSpinner *SmartSpinner

// SmartSpinner is a spinner with enhanced capabilities
type SmartSpinner struct {
	spinner *spinner.Spinner
}

// NewSmartSpinner creates a new spinner with an initial message
func NewSmartSpinner(initialMessage string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+initialMessage),
		spinner.WithWriter(os.Stderr),
	)
	return &SmartSpinner{spinner: s}
}

// Start starts the spinner and registers it as the globally active spinner.
func (s *SmartSpinner) Start() {
	activeSpinner = s
	s.spinner.Start()
}

// Stop stops the spinner and clears the active spinner record.
func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
	if activeSpinner == s {
		activeSpinner = nil
	}
}

// StopActiveSpinner stops the currently active spinner in the terminal session.
func StopActiveSpinner() {
	if activeSpinner != nil {
		activeSpinner.Stop()
	}
}

func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + msg
}

func (s *SmartSpinner) Success(msg string) {
	s.Stop()
	PrintSuccess(Out, msg)
}

func (s *SmartSpinner) Error(msg string) {
	s.Stop()
	PrintError(Out, msg)
}

// WithSpinner runs fn behind a spinner. The spinner is only shown when
// stderr is a terminal.
func WithSpinner(message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		return fn()
	}
	s := NewSmartSpinner(message)
	s.Start()
	defer s.Stop()
	return fn()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(msg string) {
	_, _ = fmt.Fprintf(Out, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(msg string) {
	_, _ = fmt.Fprintf(Out, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(title string) {
	separator := color.New(color.FgCyan).Sprint("━━━━━━━━━━━━━━━━━━━━━━━")
	_, _ = fmt.Fprintf(Out, "\n%s\n", separator)
	_, _ = fmt.Fprintf(Out, "%s %s\n", ReviewEmoji, Accent.Sprint(title))
	_, _ = fmt.Fprintf(Out, "%s\n\n", separator)
}

func PrintKeyValue(key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(Out, "   %s %s\n", keyColored, valueColored)
}

// PrintVote prints a signed label vote, green when positive and red when
// negative.
func PrintVote(who string, value int) {
	c := Dim
	switch {
	case value > 0:
		c = Success
	case value < 0:
		c = Error
	}
	_, _ = fmt.Fprintf(Out, "     %s %s\n", c.Sprintf("%+d", value), who)
}

// HandleAppError handles an application error and displays it in a friendly way.
// If translations is nil, it will use English defaults.
func HandleAppError(err error, translations ...*i18n.Translations) {
	if err == nil {
		return
	}
	StopActiveSpinner()

	var t *i18n.Translations
	if len(translations) > 0 && translations[0] != nil {
		t = translations[0]
	}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		errorColor := color.New(color.FgRed, color.Bold)
		suggestionColor := color.New(color.FgCyan)

		_, _ = fmt.Fprintln(Out)
		_, _ = errorColor.Fprintf(Out, "❌ %s: %s\n", appErr.Type, appErr.Message)

		if appErr.Err != nil {
			_, _ = Dim.Fprintf(Out, "   Details: %v\n", appErr.Err)
		}
		for _, key := range []string{domainErrors.CtxStatus, domainErrors.CtxTarget, "branch", "expected", "actual", "topic", "change", "applied", "total", "host", "field"} {
			if v, ok := appErr.Context[key]; ok {
				_, _ = Dim.Fprintf(Out, "   %s: %v\n", key, v)
			}
		}
		if body := appErr.ContextString(domainErrors.CtxBody); body != "" && appErr.Type == domainErrors.TypeHTTP {
			_, _ = Dim.Fprintf(Out, "   %s\n", body)
		}

		if appErr.Suggestion != "" {
			_, _ = fmt.Fprintln(Out)
			tryPrefix := "💡 Try: "
			if t != nil {
				tryPrefix = t.GetMessage("ui_error.try_suggestion", 0, nil)
			}
			_, _ = suggestionColor.Fprintf(Out, "%s", tryPrefix)
			lines := strings.Split(appErr.Suggestion, "\n")
			for i, line := range lines {
				if i == 0 {
					_, _ = fmt.Fprintln(Out, line)
				} else {
					_, _ = fmt.Fprintf(Out, "       %s\n", line)
				}
			}
		}
		_, _ = fmt.Fprintln(Out)
		return
	}

	PrintError(Out, err.Error())
}

// FileChange represents a modified file with its statistics
type FileChange struct {
	Path      string
	Additions int
	Deletions int
}

// ShowFilesTree shows modified files in tree format
func ShowFilesTree(changes []FileChange, headerMessage string) {
	if len(changes) == 0 {
		return
	}
	_, _ = fmt.Fprintf(Out, "\n%s\n", headerMessage)
	printTree(buildFileTree(changes), "", true)
}

// treeNode represents a node in the file tree
type treeNode struct {
	name     string
	isFile   bool
	change   *FileChange
	children map[string]*treeNode
}

func buildFileTree(changes []FileChange) *treeNode {
	root := &treeNode{children: make(map[string]*treeNode)}

	for i := range changes {
		change := &changes[i]
		parts := strings.Split(change.Path, "/")
		current := root

		for j, part := range parts {
			isFile := j == len(parts)-1

			if current.children[part] == nil {
				current.children[part] = &treeNode{
					name:     part,
					isFile:   isFile,
					children: make(map[string]*treeNode),
				}
				if isFile {
					current.children[part].change = change
				}
			}
			current = current.children[part]
		}
	}
	return root
}

func printTree(node *treeNode, prefix string, isLast bool) {
	if node.name != "" {
		connector := "├── "
		if isLast {
			connector = "└── "
		}

		name := node.name
		if !node.isFile {
			name = Info.Sprint(name + "/")
		}

		stats := ""
		if node.isFile && node.change != nil {
			statsColor := color.New(color.FgGreen)
			if node.change.Deletions > node.change.Additions {
				statsColor = color.New(color.FgRed)
			}
			stats = statsColor.Sprintf(" (+%d, -%d)", node.change.Additions, node.change.Deletions)
		}

		_, _ = fmt.Fprintf(Out, "%s%s%s%s\n", prefix, connector, name, stats)
	}

	childPrefix := prefix
	if node.name != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	// directories first, then files, each alphabetical
	sort.Slice(keys, func(i, j int) bool {
		a, b := node.children[keys[i]], node.children[keys[j]]
		if a.isFile != b.isFile {
			return !a.isFile
		}
		return keys[i] < keys[j]
	})

	for i, key := range keys {
		printTree(node.children[key], childPrefix, i == len(keys)-1)
	}
}
