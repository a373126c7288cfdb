package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tally/pkg/composition"
)

// showCommand creates the show command for inspecting records.
func (c *CLI) showCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [record.json]",
		Short: "Inspect a composition record",
		Long: `Inspect a composition record.

Prints the canonical printed form along with depth, arity, and tile
metrics. Without an argument, an interactive picker lists the record
files in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				selected, err := pickRecord(".")
				if err != nil {
					return err
				}
				if selected == "" {
					return nil // user quit without selecting
				}
				path = selected
			}
			return showRecord(path)
		},
	}

	return cmd
}

// showRecord loads a record file and prints its canonical facts.
func showRecord(path string) error {
	c, err := composition.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load record %s: %w", path, err)
	}

	fmt.Println(StyleTitle.Render(c.String()))
	printKeyValue("tiles", fmt.Sprintf("%d", c.Tiles()))
	printKeyValue("depth", fmt.Sprintf("%d", c.Depth()))
	printKeyValue("max arity", fmt.Sprintf("%d", c.MaxArity()))
	printKeyValue("nodes", fmt.Sprintf("%d", c.Size()))
	printNextStep("Render with", fmt.Sprintf("tally render %s", path))
	return nil
}

// pickRecord lists record files in dir and lets the user pick one
// interactively. Returns "" when the user quits without selecting.
func pickRecord(dir string) (string, error) {
	paths, err := findRecords(dir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		printInfo("No record files found in %s", dir)
		return "", nil
	}

	model := NewRecordListModel(paths)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", fmt.Errorf("interactive selection: %w", err)
	}

	m, ok := final.(RecordListModel)
	if !ok || m.Selected == "" {
		return "", nil
	}
	return m.Selected, nil
}

// findRecords returns the JSON record files under dir, sorted by name.
func findRecords(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, path := range matches {
		if _, err := composition.ReadFile(path); err == nil {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
