package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fepozopo/pixelview/pkg/config"
	"github.com/Fepozopo/pixelview/pkg/history"
	"github.com/Fepozopo/pixelview/pkg/imageref"
	"github.com/Fepozopo/pixelview/pkg/session"
)

func usage() {
	fmt.Println("Commands available:")
	fmt.Println("  /  - select and apply an operator")
	fmt.Println("  o  - open an image (path, url, or fzf)")
	fmt.Println("  O  - open every image in a directory (bulk)")
	fmt.Println("  z  - undo")
	fmt.Println("  y  - redo")
	fmt.Println("  r  - reset to the original images")
	fmt.Println("  i  - show image info")
	fmt.Println("  n  - next image in the directory")
	fmt.Println("  p  - previous image in the directory")
	fmt.Println("  s  - save current image as...")
	fmt.Println("  S  - save all images into a directory")
	fmt.Println("  w  - overwrite the original files")
	fmt.Println("  u  - check for updates")
	fmt.Println("  h  - show this help message")
	fmt.Println("  q  - quit")
}

// previewPrinter is the CLI's broadcast observer; it just acknowledges that
// a newer preview exists.
type previewPrinter struct{}

func (previewPrinter) UpdateImages(seq uint64, state history.State) {
	fmt.Printf("preview #%d updated (%d image(s))\n", seq, len(state))
}

// RunCLI drives an interactive edit session. A path or directory given as
// the first positional argument is opened before the loop starts.
func RunCLI(cfg *config.Config, log zerolog.Logger) {
	sess := session.NewWithFetcher(log,
		imageref.NewFetcher(cfg.FetchTimeout).WithAttempts(cfg.FetchRetries))
	sess.Subscribe(previewPrinter{})

	scratch := OpenScratch(cfg.ScratchPath)
	sess.SetGIFOptions(scratch.GIFSettings())

	if len(os.Args) >= 2 && os.Args[1] != "" {
		if err := openTarget(sess, os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
	}

	fmt.Println("pixelview")
	usage()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		r, _, err := reader.ReadRune()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read input error: %v\n", err)
			continue
		}
		// drop the rest of the line so the next prompt starts clean
		if r != '\n' {
			_, _ = reader.ReadString('\n')
		}

		switch r {
		case '/':
			if sess.Current() == nil {
				fmt.Println("No image loaded. Press 'o' to open an image first, or provide a path as the first argument.")
				continue
			}
			runOperator(sess, scratch)

		case 'o':
			path, perr := PromptLineOrFzf("Enter path or url to open (or '/' for fzf): ")
			if perr != nil || path == "" {
				fmt.Println("open cancelled")
				continue
			}
			if err := openTarget(sess, path); err != nil {
				fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", path, err)
				continue
			}
			fmt.Printf("Opened %s\n", path)
			printInfo(sess)

		case 'O':
			dir, perr := PromptLine("Enter directory to open: ")
			if perr != nil || dir == "" {
				fmt.Println("open cancelled")
				continue
			}
			refs, err := session.ListImages(dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to list %s: %v\n", dir, err)
				continue
			}
			if len(refs) == 0 {
				fmt.Println("no images found")
				continue
			}
			sess.Load(refs...)
			fmt.Printf("Opened %d image(s) from %s\n", len(refs), dir)

		case 'z':
			if _, ok := sess.Undo(); ok {
				fmt.Printf("undo (state %d/%d)\n", sess.HistoryIndex()+1, sess.HistoryLen())
			} else {
				fmt.Println("nothing to undo")
			}

		case 'y':
			if _, ok := sess.Redo(); ok {
				fmt.Printf("redo (state %d/%d)\n", sess.HistoryIndex()+1, sess.HistoryLen())
			} else {
				fmt.Println("nothing to redo")
			}

		case 'r':
			if _, ok := sess.Reset(); ok {
				fmt.Println("reset to original images")
			} else {
				fmt.Println("nothing to reset")
			}

		case 'i':
			printInfo(sess)

		case 'n':
			if ref, ok := sess.Next(); ok {
				fmt.Printf("Opened %s\n", ref.LocalPath())
			} else {
				fmt.Println("no next image")
			}

		case 'p':
			if ref, ok := sess.Previous(); ok {
				fmt.Printf("Opened %s\n", ref.LocalPath())
			} else {
				fmt.Println("no previous image")
			}

		case 's':
			out, _ := PromptLine("Enter output filename: ")
			if out == "" {
				fmt.Println("no filename provided")
				continue
			}
			if err := sess.Save(context.Background(), 0, out); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write image: %v\n", err)
				continue
			}
			fmt.Printf("Saved to %s\n", out)

		case 'S':
			dir, _ := PromptLine("Enter output directory: ")
			if dir == "" {
				fmt.Println("no directory provided")
				continue
			}
			if err := sess.SaveAll(context.Background(), dir); err != nil {
				fmt.Fprintf(os.Stderr, "some images failed to save: %v\n", err)
				continue
			}
			fmt.Printf("Saved into %s\n", dir)

		case 'w':
			if !PromptYesNo("Overwrite the original files?") {
				fmt.Println("overwrite cancelled")
				continue
			}
			if err := sess.Overwrite(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "overwrite failed: %v\n", err)
				continue
			}
			fmt.Println("Originals overwritten")

		case 'u':
			if err := CheckForUpdates(); err != nil {
				fmt.Fprintf(os.Stderr, "update check error: %v\n", err)
			}

		case 'h':
			usage()

		case 'q':
			fmt.Println("Exiting...")
			return

		default:
			// ignore other keys
		}
	}
}

func openTarget(sess *session.EditSession, target string) error {
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		refs, err := session.ListImages(target)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return fmt.Errorf("no images in %s", target)
		}
		sess.Load(refs...)
		return nil
	}
	ref := imageref.Parse(target)
	// fail early on unreadable bytes instead of at the first operator
	if _, err := ref.Resolve(context.Background(), imageref.NewFetcher(0)); err != nil {
		return err
	}
	sess.Load(ref)
	return nil
}

func runOperator(sess *session.EditSession, scratch *Scratch) {
	name := selectCommand()
	if name == "" {
		return
	}
	c, ok := FindCommand(name)
	if !ok {
		fmt.Printf("unknown command: %s\n", name)
		return
	}

	fmt.Printf("\n%s - %s\n  usage: %s\n\n", c.Name, c.Description, c.Usage)
	args := make(map[string]string, len(c.Args))
	for _, a := range c.Args {
		label := fmt.Sprintf("%s (%s)", a.Name, a.Type)
		val, err := PromptDefault(label, scratch.ArgDefault(c.Name, a))
		if err != nil {
			fmt.Fprintf(os.Stderr, "input error: %v\n", err)
			return
		}
		if val == "" && a.Required {
			fmt.Printf("%s is required, aborting\n", a.Name)
			return
		}
		args[a.Name] = val
	}

	if c.Name == "gifEffects" {
		req, err := BuildGIFEffects(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "input validation error: %v\n", err)
			return
		}
		if _, err := sess.ApplyGIFEffects(context.Background(), req); err != nil {
			fmt.Fprintf(os.Stderr, "apply command error: %v\n", err)
			return
		}
		scratch.RememberArgs(c.Name, args)
		scratch.SetGIFSettings(sess.GIFOptions())
		if err := scratch.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "could not persist scratch values: %v\n", err)
		}
		fmt.Println("Applied gifEffects")
		return
	}

	req, err := BuildRequest(c.Name, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "input validation error: %v\n", err)
		return
	}

	mode := session.Commit
	if c.Preview && PromptYesNo("Preview only (no commit)?") {
		mode = session.Preview
	}
	if _, err := sess.Apply(context.Background(), req, mode); err != nil {
		fmt.Fprintf(os.Stderr, "apply command error: %v\n", err)
		return
	}

	if mode == session.Commit {
		scratch.RememberArgs(c.Name, args)
		if err := scratch.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "could not persist scratch values: %v\n", err)
		}
		fmt.Printf("Applied %s (state %d/%d)\n", c.Name, sess.HistoryIndex()+1, sess.HistoryLen())
	} else {
		fmt.Printf("Previewed %s (history unchanged)\n", c.Name)
	}
}

func selectCommand() string {
	name, err := SelectCommandWithFzf(Commands)
	if err == nil && name != "" {
		return name
	}

	// fzf unavailable or returned nothing, fall back to a textual list
	fmt.Println("Command selection (fallback):")
	for i, c := range Commands {
		fmt.Printf("  %d) %s - %s\n", i+1, c.Name, c.Description)
	}
	selection, _ := PromptLine("Enter number or command name (leave empty to cancel): ")
	if selection == "" {
		fmt.Println("selection cancelled")
		return ""
	}
	if idx, perr := strconv.Atoi(selection); perr == nil {
		if idx < 1 || idx > len(Commands) {
			fmt.Println("invalid selection")
			return ""
		}
		return Commands[idx-1].Name
	}

	selLower := strings.ToLower(selection)
	for _, c := range Commands {
		if strings.ToLower(c.Name) == selLower {
			return c.Name
		}
	}
	var matches []string
	for _, c := range Commands {
		if strings.HasPrefix(strings.ToLower(c.Name), selLower) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0]
	case 0:
		fmt.Printf("unknown command: %s\n", selection)
	default:
		fmt.Println("ambiguous selection, candidates:")
		for _, m := range matches {
			fmt.Println("  " + m)
		}
	}
	return ""
}

func printInfo(sess *session.EditSession) {
	metas, err := sess.Metadata(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "metadata error: %v\n", err)
	}
	for _, m := range metas {
		fmt.Printf("%s: %dx%d %s, %s", m.Name, m.Width, m.Height, m.Format, m.ReadableSize())
		if m.Frames > 1 {
			fmt.Printf(", %d frames", m.Frames)
		}
		if m.DPI > 0 {
			fmt.Printf(", %d dpi", m.DPI)
		}
		if m.Alpha {
			fmt.Print(", alpha")
		}
		fmt.Println()
	}
}
