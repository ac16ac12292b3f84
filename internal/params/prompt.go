package params

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/arcanaland/scryfetch/internal/card"
	"github.com/arcanaland/scryfetch/internal/naming"
)

// PromptSource asks for every value on an interactive console
type PromptSource struct {
	in  *bufio.Reader
	out io.Writer

	errColor *color.Color
	okColor  *color.Color
}

// NewPromptSource reads answers from in and writes prompts to out
func NewPromptSource(in io.Reader, out io.Writer) *PromptSource {
	return &PromptSource{
		in:       bufio.NewReader(in),
		out:      out,
		errColor: color.New(color.FgRed),
		okColor:  color.New(color.FgGreen),
	}
}

// Params runs the prompt sequence: JSON file, image size, resize and
// target directory. It returns ErrCancelled if the user backs out or
// input ends.
func (p *PromptSource) Params(ctx context.Context) (*Params, error) {
	path, cards, err := p.askCards(ctx)
	if err != nil {
		return nil, err
	}
	size, err := p.askSize(ctx)
	if err != nil {
		return nil, err
	}
	resize, err := p.askResize(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := p.askTargetDir(ctx)
	if err != nil {
		return nil, err
	}

	return &Params{
		JSONPath:  path,
		Cards:     cards,
		Size:      size,
		Resize:    resize,
		OutputDir: dir,
	}, nil
}

func (p *PromptSource) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", ErrCancelled
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *PromptSource) errorf(format string, args ...interface{}) {
	p.errColor.Fprintf(p.out, format+"\n", args...)
}

func (p *PromptSource) askCards(ctx context.Context) (string, []card.Card, error) {
	for {
		answer, err := p.ask(ctx, "\nEnter path to JSON file (or drag & drop): ")
		if err != nil {
			return "", nil, err
		}
		path := card.TrimPathInput(answer)
		if path == "" {
			p.errorf("Error: Please enter a file path.")
			continue
		}
		if _, err := os.Stat(path); err != nil {
			p.errorf("Error: File '%s' doesn't exist.", path)
			continue
		}
		cards, err := card.LoadCards(path)
		if err != nil {
			p.errorf("Error: %v", err)
			continue
		}
		return path, cards, nil
	}
}

func (p *PromptSource) askSize(ctx context.Context) (card.Size, error) {
	fmt.Fprintln(p.out, "\nChoose image size for all cards:")
	for i, s := range card.Sizes {
		fmt.Fprintf(p.out, "%d - %s\n", i+1, s.Label())
	}
	for {
		answer, err := p.ask(ctx, fmt.Sprintf("Enter choice (1-%d): ", len(card.Sizes)))
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(card.Sizes) {
			return card.Sizes[n-1], nil
		}
		p.errorf("Invalid choice")
	}
}

func (p *PromptSource) askYesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		answer, err := p.ask(ctx, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToUpper(answer) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}
		p.errorf("Invalid input")
	}
}

func (p *PromptSource) askResize(ctx context.Context) (*card.Resize, error) {
	yes, err := p.askYesNo(ctx, "\nDo you want to resize images? (Y/N): ")
	if err != nil || !yes {
		return nil, err
	}
	for {
		w, err := p.askInt(ctx, "Enter width in pixels: ")
		if err != nil {
			return nil, err
		}
		h, err := p.askInt(ctx, "Enter height in pixels: ")
		if err != nil {
			return nil, err
		}
		resize, err := card.NewResize(w, h)
		if err != nil {
			p.errorf("Dimensions must be positive")
			continue
		}
		return resize, nil
	}
}

func (p *PromptSource) askInt(ctx context.Context, prompt string) (int, error) {
	for {
		answer, err := p.ask(ctx, prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil {
			return n, nil
		}
		p.errorf("Please enter a valid number!")
	}
}

// askTargetDir asks for an existing parent directory and optionally a new
// subfolder inside it.
func (p *PromptSource) askTargetDir(ctx context.Context) (string, error) {
	for {
		answer, err := p.ask(ctx, "\nEnter target directory (or drag & drop): ")
		if err != nil {
			return "", err
		}
		base := card.TrimPathInput(answer)
		if base == "" {
			p.errorf("Error: Please enter a directory path.")
			continue
		}
		if info, err := os.Stat(base); err != nil || !info.IsDir() {
			p.errorf("Error: Directory '%s' doesn't exist.", base)
			continue
		}

		create, err := p.askYesNo(ctx, "\nDo you want to create a new subfolder? (Y/N): ")
		if err != nil {
			return "", err
		}
		if !create {
			fmt.Fprintf(p.out, "Using existing directory: %s\n", base)
			return base, nil
		}

		dir, err := p.askSubfolder(ctx, base)
		if err != nil {
			return "", err
		}
		if dir != "" {
			return dir, nil
		}
		// empty dir: pick a different parent
	}
}

func (p *PromptSource) askSubfolder(ctx context.Context, base string) (string, error) {
	var name string
	for {
		answer, err := p.ask(ctx, "\nEnter new folder name: ")
		if err != nil {
			return "", err
		}
		if answer == "" {
			p.errorf("Error: Folder name cannot be empty.")
			continue
		}
		if bad := naming.InvalidChars(answer); len(bad) > 0 {
			p.errorf("Error: Invalid characters detected: %s", strings.Join(bad, ", "))
			continue
		}
		name = answer
		break
	}

	target := filepath.Join(base, name)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		if err := os.Mkdir(target, 0755); err != nil {
			p.errorf("\nError: Failed to create folder\nReason: %v", err)
			return "", nil
		}
		p.okColor.Fprintf(p.out, "\nSuccess: Created new folder\n%s\n", target)
		return target, nil
	}

	fmt.Fprintf(p.out, "\nFolder '%s' already exists in:\n%s\n", name, base)
	for {
		fmt.Fprintln(p.out, "\nChoose action:")
		fmt.Fprintln(p.out, "1 - Overwrite existing folder")
		fmt.Fprintln(p.out, "2 - Create with automatic unique name")
		fmt.Fprintln(p.out, "3 - Select different parent directory")
		fmt.Fprintln(p.out, "0 - Cancel operation")
		choice, err := p.ask(ctx, "Your choice: ")
		if err != nil {
			return "", err
		}

		switch choice {
		case "1":
			if err := os.RemoveAll(target); err != nil {
				p.errorf("\nError: Failed to overwrite folder\nReason: %v", err)
				return "", nil
			}
			if err := os.Mkdir(target, 0755); err != nil {
				p.errorf("\nError: Failed to overwrite folder\nReason: %v", err)
				return "", nil
			}
			p.okColor.Fprintf(p.out, "\nSuccess: Overwritten existing folder\n%s\n", target)
			return target, nil
		case "2":
			dir, err := naming.UniqueDir(base, name)
			if err == nil {
				err = os.Mkdir(dir, 0755)
			}
			if err != nil {
				p.errorf("\nError: Failed to create folder\nReason: %v", err)
				return "", nil
			}
			p.okColor.Fprintf(p.out, "\nSuccess: Created new folder\n%s\n", dir)
			return dir, nil
		case "3":
			return "", nil
		case "0":
			return "", ErrCancelled
		default:
			p.errorf("\nInvalid choice. Please enter 0-3.")
		}
	}
}
