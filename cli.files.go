package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// list flags
var (
	listSearch string
	listBy     string
	listGenre  string
	listAuthor string
	listStatus string
	listRating string
	listSort   string
	listLocale string
)

func init() {
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newValidateCmd())

	cmd := newListCmd()
	cmd.Flags().StringVar(&listSearch, "search", "", "Text to look for, case insensitive")
	cmd.Flags().StringVar(&listBy, "by", "title", "Field searched: title, author or isbn")
	cmd.Flags().StringVar(&listGenre, "genre", "", "Keep only this genre")
	cmd.Flags().StringVar(&listAuthor, "author", "", "Keep only this author")
	cmd.Flags().StringVar(&listStatus, "status", "", "Keep only this reading status")
	cmd.Flags().StringVar(&listRating, "rating", "", "Keep only this rating, 0 for unrated")
	cmd.Flags().StringVar(&listSort, "sort", "none", "Sort order: none, title-asc, title-desc, author-asc, author-desc, rating-asc, rating-desc")
	cmd.Flags().StringVar(&listLocale, "locale", "it", "Language used to compare texts")
	rootCmd.AddCommand(cmd)
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <source> <destination>",
		Short: "Convert a catalogue file between JSON and CSV",
		Long: `The convert command loads a catalogue file and saves the same books,
in the same order, in the format given by the destination extension.
Nothing is written when the source holds an invalid book.

Example:
  libreria convert libri.json libri.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1])
		},
	}
}

func runConvert(src, dst string) error {
	logger := NewCLILogger(verbose)
	from, err := CodecFor(src, logger)
	if err != nil {
		return err
	}
	to, err := CodecFor(dst, logger)
	if err != nil {
		return err
	}
	printVerbose("Loading %s as %s\n", src, from.Name())
	books, err := from.Load(src)
	if err != nil {
		return err
	}
	printVerbose("Saving %s as %s\n", dst, to.Name())
	if err = to.Save(books, dst); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]interface{}{"source": src, "destination": dst, "books": len(books)})
	}
	printInfo("Converted %d book(s) from %s to %s\n", len(books), src, dst)
	return nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check catalogue files without loading them anywhere",
		Long: `The validate command reads every given catalogue file and reports
each invalid book with its line or position.

Example:
  libreria validate libri.json libri.csv
  libreria validate libri.csv --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
}

// validationResult is the outcome of the validation of one file.
type validationResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Books  int      `json:"books"`
	Errors []string `json:"errors,omitempty"`
}

func runValidate(files []string) error {
	logger := NewCLILogger(verbose)
	results := make([]validationResult, 0, len(files))
	invalid := 0
	for _, file := range files {
		result := validationResult{File: file}
		books, err := loadCatalogFile(file, logger)
		switch {
		case err == nil:
			result.Valid = true
			result.Books = len(books)
		default:
			invalid++
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				result.Errors = loadErr.Messages()
			} else {
				result.Errors = []string{err.Error()}
			}
		}
		results = append(results, result)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				printInfo("✓ %s: %d book(s)\n", r.File, r.Books)
				continue
			}
			printInfo("✗ %s\n", r.File)
			for _, msg := range r.Errors {
				printInfo("    %s\n", msg)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) invalid", invalid, len(files))
	}
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "Print the books of a catalogue file",
		Long: `The list command prints the books of a catalogue file, optionally
filtered and sorted like the api does.

Example:
  libreria list libri.csv --genre Romanzo --sort rating-desc
  libreria list libri.json --search calvino --by author --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0])
		},
	}
}

func runList(file string) error {
	q, err := ParseQuery(listSearch, listBy, listGenre, listAuthor, listStatus, listRating, listSort)
	if err != nil {
		return err
	}
	tag, err := language.Parse(listLocale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %v", listLocale, err)
	}
	books, err := loadCatalogFile(file, NewCLILogger(verbose))
	if err != nil {
		return err
	}
	books = ApplyQuery(books, q, tag)

	if jsonOut {
		return printJSON(books)
	}
	if quiet {
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITOLO\tAUTORE\tISBN\tGENERE\tVALUTAZIONE\tSTATO")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", b.Title, b.Author, b.ISBN, b.Genre, b.RatingText(), b.Status.Label())
	}
	if err = tw.Flush(); err != nil {
		return err
	}
	printVerbose("%d book(s)\n", len(books))
	return nil
}

// loadCatalogFile loads path with the codec matching its extension.
func loadCatalogFile(path string, logger *zap.Logger) ([]Book, error) {
	codec, err := CodecFor(path, logger)
	if err != nil {
		return nil, err
	}
	printVerbose("Loading %s as %s\n", path, codec.Name())
	return codec.Load(path)
}
