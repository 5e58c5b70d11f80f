package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/mriview/internal/config"
	"github.com/nao1215/mriview/internal/imagefile"
	"github.com/nao1215/mriview/internal/model"
	"github.com/nao1215/mriview/internal/report"
	"github.com/nao1215/mriview/internal/workflow"
)

const shellPrompt = "mriview> "

const shellHelp = `Commands:
  select <path>        choose the image to analyze
  analyze [path]       analyze the selected image (or select path first)
  history              reload and print the history
  open <id|number>     show an analysis
  save [dir]           download the images of the open analysis
  delete               delete the open analysis
  close                close the open analysis
  state                print the submission and detail state
  help                 print this help
  quit                 leave the shell`

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// NewShellCmd creates the shell command.
func NewShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with the analysis service",
		Long: `Shell keeps one session open so that images can be selected, analyzed,
inspected and deleted in turn, the way the web page works. The history is
loaded on start and refreshed after every analysis and deletion.`,
		Args: cobra.NoArgs,
		RunE: runShellCmd,
	}
}

func runShellCmd(cmd *cobra.Command, _ []string) (err error) {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sh := &shell{session: s}
	sh.greet(ctx)

	for ctx.Err() == nil {
		sh.term.mu.Lock()
		fmt.Fprint(sh.term.out, shellPrompt)
		sh.term.mu.Unlock()

		line, err := sh.term.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			sh.term.Notify("Error: " + err.Error())
		}
	}
	return nil
}

// shell runs one command line at a time against a session.
type shell struct {
	*session
}

func (sh *shell) greet(ctx context.Context) {
	view := sh.app.History.Refresh(ctx)
	switch view.State {
	case model.HistoryPopulated:
		sh.term.Notify(fmt.Sprintf("Connected to %s, %d analyses in history.", sh.resolver.Base(), len(view.Entries)))
	default:
		sh.term.Notify(fmt.Sprintf("Connected to %s. %s", sh.resolver.Base(), view.Message))
	}
	sh.term.Notify(`Type "help" for commands.`)
}

func (sh *shell) exec(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "":
		return nil
	case "help", "?":
		sh.term.Notify(shellHelp)
		return nil
	case "quit", "exit":
		return errQuit
	case "select":
		return sh.selectFile(arg)
	case "analyze":
		return sh.analyze(ctx, arg)
	case "history":
		_, err := sh.writer.WriteHistory(sh.app.History.Refresh(ctx))
		return err
	case "open":
		if arg == "" {
			return errors.New("usage: open <id|number>")
		}
		content, err := openTarget(ctx, sh.session, arg)
		if err != nil {
			return err
		}
		_, err = sh.writer.WriteDetail(report.Detail{Content: content})
		return err
	case "save":
		return sh.save(ctx, arg)
	case "delete":
		return sh.delete(ctx)
	case "close":
		sh.app.Modal.Close()
		return nil
	case "state":
		sh.printState()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try \"help\")", name)
	}
}

func (sh *shell) selectFile(path string) error {
	if path == "" {
		return errors.New("usage: select <path>")
	}
	file, err := imagefile.Load(path, sh.cfg.MaxUploadSize)
	if err != nil {
		return err
	}
	sh.app.Submitter.SelectFile(file)
	sh.term.Notify("Selected " + imagefile.Describe(file))
	return nil
}

func (sh *shell) analyze(ctx context.Context, path string) error {
	if path != "" {
		if err := sh.selectFile(path); err != nil {
			return err
		}
	}

	if _, err := sh.app.Submitter.Submit(ctx); err != nil {
		return err
	}
	_, err := sh.writer.WriteSubmission(report.Submission{
		File: sh.app.Submitter.Selected(),
		View: sh.app.Submitter.View(),
	})
	return err
}

func (sh *shell) save(ctx context.Context, dir string) error {
	if _, open := sh.app.Modal.CurrentAnalysisID(); !open {
		return errors.New("no analysis is open")
	}
	content := sh.app.Modal.Content()
	if content.Error != "" {
		return errors.New(content.Error)
	}
	if dir == "" {
		dir = config.DownloadDir()
	}

	saved, err := saveArtifacts(ctx, sh.session, content, dir)
	if err != nil {
		return err
	}
	_, err = sh.writer.WriteDetail(report.Detail{Content: content, Saved: saved})
	return err
}

func (sh *shell) delete(ctx context.Context) error {
	if _, open := sh.app.Modal.CurrentAnalysisID(); !open {
		return errors.New("no analysis is open")
	}
	if sh.app.Modal.Delete(ctx) == workflow.DeleteCancelled {
		sh.term.Notify("Deletion cancelled")
	}
	return nil
}

func (sh *shell) printState() {
	var b strings.Builder

	fmt.Fprintf(&b, "submission: %s", sh.app.Submitter.Phase().Kind())
	if f := sh.app.Submitter.Selected(); f != nil {
		fmt.Fprintf(&b, ", selected %s", imagefile.Describe(f))
	}
	if !sh.app.Submitter.CanSubmit() {
		b.WriteString(", submit disabled")
	}

	st := sh.app.Modal.State()
	if st.Open {
		fmt.Fprintf(&b, "\ndetail: %s open", st.AnalysisID)
		if st.HasOverlay != nil {
			fmt.Fprintf(&b, ", overlay %t", *st.HasOverlay)
		}
	} else {
		b.WriteString("\ndetail: closed")
	}

	fmt.Fprintf(&b, "\nhistory: %s, %d entries", sh.app.History.View().State, len(sh.app.History.View().Entries))
	sh.term.Notify(b.String())
}
