// ABOUTME: Execution options CLI commands: show, set, reset
package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/olivinha/console/models"
	"github.com/olivinha/console/options"
)

// OptionsCommand inspects or edits the persisted execution options.
func OptionsCommand(store *options.Store, args []string) error {
	if len(args) == 0 {
		printOptions(store.Load())
		return nil
	}

	switch args[0] {
	case "show":
		printOptions(store.Load())
		return nil

	case "reset":
		printOptions(store.Reset())
		fmt.Println("\n✓ Options reset to defaults")
		return nil

	case "set":
		return setOptions(store, args[1:])

	default:
		return fmt.Errorf("unknown options command: %s", args[0])
	}
}

func setOptions(store *options.Store, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	startDate := fs.String("start-date", "", "Start date (YYYY-MM-DD)")
	exclude := fs.String("exclude", "", "Comma-separated excluded categories")
	_ = fs.Parse(args)

	opts := store.Load()

	if *startDate != "" {
		if !options.IsValidISODate(*startDate) {
			return options.ErrStartDateInvalid
		}
		opts.StartDate = *startDate
	}

	if *exclude != "" {
		opts.ExcludeCategories = strings.Split(*exclude, ",")
	}

	opts = options.Normalize(opts)
	store.Save(opts)
	printOptions(opts)
	return nil
}

func printOptions(opts models.ExecutionOptions) {
	fmt.Printf("Start date:          %s\n", opts.StartDate)
	if len(opts.ExcludeCategories) == 0 {
		fmt.Println("Excluded categories: (none)")
		return
	}
	fmt.Printf("Excluded categories: %s\n", strings.Join(opts.ExcludeCategories, ", "))
}
