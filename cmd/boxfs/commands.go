package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertwitch/boxfs/internal/boxfs"
	"github.com/desertwitch/boxfs/internal/boxpath"
	"github.com/desertwitch/boxfs/internal/hostfs"
	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

//nolint:gochecknoglobals
var commands = []*command{
	{name: "init", usage: "", summary: "create a new empty container", create: true, run: runInit},
	{name: "ls", usage: "[path]", summary: "list a directory", maxArgs: 1, run: runList},
	{name: "tree", usage: "[path]", summary: "print the tree below a directory", maxArgs: 1, run: runTree},
	{name: "cat", usage: "<path>", summary: "print the content of a file", minArgs: 1, maxArgs: 1, run: runCat},
	{name: "put", usage: "<host-file> <path>", summary: "copy a host file into the container", minArgs: 2, maxArgs: 2, run: runPut},
	{name: "get", usage: "<path> <host-file>", summary: "copy a file out of the container", minArgs: 2, maxArgs: 2, run: runGet},
	{name: "write", usage: "<path> <text>", summary: "replace the content of a file", minArgs: 2, maxArgs: 2, run: runWrite},
	{name: "append", usage: "<path> <text>", summary: "append to the content of a file", minArgs: 2, maxArgs: 2, run: runAppend},
	{name: "mkdir", usage: "<path>", summary: "create a directory", minArgs: 1, maxArgs: 1, run: runMkdir},
	{name: "touch", usage: "<path>", summary: "create an empty file", minArgs: 1, maxArgs: 1, run: runTouch},
	{name: "rm", usage: "<path>", summary: "delete a file or directory tree", minArgs: 1, maxArgs: 1, run: runRemove},
	{name: "mv", usage: "<from> <to>", summary: "move an entry", minArgs: 2, maxArgs: 2, run: runMove},
	{name: "rename", usage: "<from> <to>", summary: "rename an entry in place", minArgs: 2, maxArgs: 2, run: runRename},
	{name: "cp", usage: "<from> <to>", summary: "copy a file or directory tree", minArgs: 2, maxArgs: 2, run: runCopy},
	{name: "populate", usage: "<host-dir> <path>", summary: "import a host directory tree", minArgs: 2, maxArgs: 2, run: runPopulate},
	{name: "materialize", usage: "<path> <host-dir>", summary: "export a directory tree to the host", minArgs: 2, maxArgs: 2, run: runMaterialize},
	{name: "compact", usage: "", summary: "reclaim unreachable space", run: runCompact},
	{name: "info", usage: "", summary: "show container statistics", run: runInfo},
	{name: "sum", usage: "[path]", summary: "print blake3 checksums of files", maxArgs: 1, run: runSum},
}

func parsePaths(args ...string) ([]boxpath.Path, error) {
	paths := make([]boxpath.Path, 0, len(args))

	for _, arg := range args {
		p, err := boxpath.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		paths = append(paths, p)
	}

	return paths, nil
}

func optionalPath(args []string) (boxpath.Path, error) {
	if len(args) == 0 {
		return boxpath.Root(), nil
	}

	paths, err := parsePaths(args[0])
	if err != nil {
		return boxpath.Path{}, err
	}

	return paths[0], nil
}

func rejected(ok bool, err error, format string, args ...any) error {
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrRejected, fmt.Sprintf(format, args...))
	}

	return nil
}

func (app *App) ensureParent(p boxpath.Path) error {
	if !app.parents || p.Depth() < 2 { //nolint:mnd
		return nil
	}

	parent, err := p.WithoutLast()
	if err != nil {
		return err
	}

	if _, err := app.box.CreateDirectories(parent); err != nil {
		return err
	}

	return nil
}

func runInit(_ context.Context, app *App, _ []string) error {
	fmt.Fprintf(app.out, "Created container %s\n", app.box.Path())

	return nil
}

func runList(_ context.Context, app *App, args []string) error {
	dir, err := optionalPath(args)
	if err != nil {
		return err
	}

	children, ok, err := app.box.ListDirectory(dir)
	if err := rejected(ok, err, "%s is not a directory", dir); err != nil {
		return err
	}

	var sb strings.Builder

	for _, child := range children {
		name, err := child.Last()
		if err != nil {
			return err
		}

		isDirectory, err := app.box.IsDirectory(child)
		if err != nil {
			return err
		}

		switch {
		case isDirectory && app.long:
			fmt.Fprintf(&sb, "d %10s %s\n", "-", directoryStyle.Render(name+boxpath.Separator))
		case isDirectory:
			sb.WriteString(directoryStyle.Render(name+boxpath.Separator) + "\n")
		case app.long:
			size, _, err := app.box.FileSize(child)
			if err != nil {
				return err
			}
			fmt.Fprintf(&sb, "f %10s %s\n", humanize.Bytes(uint64(size)), name) //nolint:gosec
		default:
			sb.WriteString(name + "\n")
		}
	}

	fmt.Fprint(app.out, sb.String())

	return nil
}

func runTree(_ context.Context, app *App, args []string) error {
	dir, err := optionalPath(args)
	if err != nil {
		return err
	}

	tree, ok, err := app.box.VisualTree(dir)
	if err := rejected(ok, err, "%s is not a directory", dir); err != nil {
		return err
	}

	fmt.Fprintln(app.out, dir.String())
	fmt.Fprint(app.out, tree)

	return nil
}

func runCat(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args...)
	if err != nil {
		return err
	}

	content, ok, err := app.box.ReadFile(paths[0])
	if err := rejected(ok, err, "%s is not a file", paths[0]); err != nil {
		return err
	}

	if _, err := app.out.Write(content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (app *App) storeFile(p boxpath.Path, content []byte) error {
	if err := app.ensureParent(p); err != nil {
		return err
	}

	isFile, err := app.box.IsFile(p)
	if err != nil {
		return err
	}

	if !isFile {
		ok, err := app.box.CreateFile(p, max(app.sizeHint, len(content)))
		if err := rejected(ok, err, "cannot create file %s", p); err != nil {
			return err
		}
	}

	ok, err := app.box.WriteFile(p, content)

	return rejected(ok, err, "cannot write file %s", p)
}

func runPut(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args[1])
	if err != nil {
		return err
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read host file: %w", err)
	}

	if err := app.storeFile(paths[0], content); err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Stored %s as %s\n", humanize.Bytes(uint64(len(content))), paths[0])

	return nil
}

func runGet(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args[0])
	if err != nil {
		return err
	}

	content, ok, err := app.box.ReadFile(paths[0])
	if err := rejected(ok, err, "%s is not a file", paths[0]); err != nil {
		return err
	}

	if err := os.WriteFile(args[1], content, 0o644); err != nil { //nolint:mnd,gosec
		return fmt.Errorf("failed to write host file: %w", err)
	}

	return nil
}

func runWrite(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args[0])
	if err != nil {
		return err
	}

	return app.storeFile(paths[0], []byte(args[1]))
}

func runAppend(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args[0])
	if err != nil {
		return err
	}

	ok, err := app.box.AppendFile(paths[0], []byte(args[1]))

	return rejected(ok, err, "%s is not a file", paths[0])
}

func runMkdir(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args...)
	if err != nil {
		return err
	}

	if app.parents {
		if _, err := app.box.CreateDirectories(paths[0]); err != nil {
			return err
		}

		isDirectory, err := app.box.IsDirectory(paths[0])

		return rejected(isDirectory, err, "cannot create directory %s", paths[0])
	}

	ok, err := app.box.CreateDirectory(paths[0])

	return rejected(ok, err, "cannot create directory %s", paths[0])
}

func runTouch(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args...)
	if err != nil {
		return err
	}

	if err := app.ensureParent(paths[0]); err != nil {
		return err
	}

	ok, err := app.box.CreateFile(paths[0], app.sizeHint)

	return rejected(ok, err, "cannot create file %s", paths[0])
}

func runRemove(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args...)
	if err != nil {
		return err
	}

	ok, err := app.box.Delete(paths[0])

	return rejected(ok, err, "cannot delete %s", paths[0])
}

func runMove(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args...)
	if err != nil {
		return err
	}

	ok, err := app.box.Move(paths[0], paths[1])

	return rejected(ok, err, "cannot move %s to %s", paths[0], paths[1])
}

func runRename(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args...)
	if err != nil {
		return err
	}

	ok, err := app.box.Rename(paths[0], paths[1])

	return rejected(ok, err, "cannot rename %s to %s", paths[0], paths[1])
}

func runCopy(_ context.Context, app *App, args []string) error {
	paths, err := parsePaths(args...)
	if err != nil {
		return err
	}

	ok, err := app.box.Copy(paths[0], paths[1])

	return rejected(ok, err, "cannot copy %s to %s", paths[0], paths[1])
}

func printTransfer(app *App, title string, report hostfs.Report) {
	printReport(app.out, title, []field{
		countField("Directories", report.Directories),
		countField("Files", report.Files),
		bytesField("Content", report.Bytes),
		countField("Skipped", report.Skipped),
	})
}

func runPopulate(ctx context.Context, app *App, args []string) error {
	paths, err := parsePaths(args[1])
	if err != nil {
		return err
	}

	report, err := app.hostHandler.Populate(ctx, app.box, args[0], paths[0])
	if err != nil {
		return err
	}

	printTransfer(app, "Populated", report)

	return nil
}

func runMaterialize(ctx context.Context, app *App, args []string) error {
	paths, err := parsePaths(args[0])
	if err != nil {
		return err
	}

	report, err := app.hostHandler.Materialize(ctx, app.box, paths[0], args[1])
	if err != nil {
		return err
	}

	printTransfer(app, "Materialized", report)

	return nil
}

func runCompact(_ context.Context, app *App, _ []string) error {
	before := uint64(app.box.Size()) //nolint:gosec

	enough, err := app.hostHandler.HasEnoughFreeSpace(filepath.Dir(app.box.Path()), app.config.FreeSpaceFloor, before)
	if err != nil {
		return err
	}

	if !enough {
		return fmt.Errorf("%w: %s needed next to %s", ErrNotEnoughSpace, humanize.Bytes(before), app.box.Path())
	}

	if err := app.box.Compact(); err != nil {
		return err
	}

	after := uint64(app.box.Size()) //nolint:gosec

	printReport(app.out, "Compacted", []field{
		bytesField("Before", before),
		bytesField("After", after),
		bytesField("Reclaimed", before-min(before, after)),
	})

	return nil
}

type statistics struct {
	directories int
	files       int
	content     uint64
}

func (app *App) collectStatistics() (statistics, error) {
	var stats statistics

	_, err := app.box.VisitFileTree(boxpath.Root(), boxfs.VisitorFuncs{
		PreVisitDirectoryFunc: func(_ boxpath.Path) (boxfs.VisitResult, error) {
			stats.directories++

			return boxfs.Continue, nil
		},
		VisitFileFunc: func(file boxpath.Path) (boxfs.VisitResult, error) {
			size, _, err := app.box.FileSize(file)
			if err != nil {
				return boxfs.Terminate, err
			}
			stats.files++
			stats.content += uint64(size) //nolint:gosec

			return boxfs.Continue, nil
		},
	})

	return stats, err
}

func runInfo(_ context.Context, app *App, _ []string) error {
	stats, err := app.collectStatistics()
	if err != nil {
		return err
	}

	printReport(app.out, "Container", []field{
		{"Path", app.box.Path()},
		bytesField("Size", uint64(app.box.Size())), //nolint:gosec
		countField("Directories", stats.directories),
		countField("Files", stats.files),
		bytesField("Content", stats.content),
	})

	return nil
}

func (app *App) checksum(p boxpath.Path) (string, error) {
	content, ok, err := app.box.ReadFile(p)
	if err := rejected(ok, err, "%s is not a file", p); err != nil {
		return "", err
	}

	sum := blake3.Sum256(content)

	return hex.EncodeToString(sum[:]), nil
}

func runSum(_ context.Context, app *App, args []string) error {
	target, err := optionalPath(args)
	if err != nil {
		return err
	}

	var sb strings.Builder

	isDirectory, err := app.box.IsDirectory(target)
	if err != nil {
		return err
	}

	if !isDirectory {
		sum, err := app.checksum(target)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "%s  %s\n", sum, target)
		fmt.Fprint(app.out, sb.String())

		return nil
	}

	_, err = app.box.VisitFileTree(target, boxfs.VisitorFuncs{
		VisitFileFunc: func(file boxpath.Path) (boxfs.VisitResult, error) {
			sum, err := app.checksum(file)
			if err != nil {
				return boxfs.Terminate, err
			}
			fmt.Fprintf(&sb, "%s  %s\n", sum, file)

			return boxfs.Continue, nil
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprint(app.out, sb.String())

	return nil
}
