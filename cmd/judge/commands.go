package main

import (
	"context"
	"fmt"
	"os"

	"github.com/codepractice/remote-judge/client"
	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/problem"
	"github.com/codepractice/remote-judge/types"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

const defaultExerciseDir = "exercises"

var (
	passed = color.New(color.FgGreen, color.Bold).SprintFunc()
	failed = color.New(color.FgRed, color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// newClient creates the client for lang and the function that releases the
// sandbox connections
func (a *app) newClient(lang types.Language) (*client.Client, func() error, error) {
	langs, err := a.conf.Languages()
	if err != nil {
		return nil, nil, err
	}
	b, closeFn, err := a.conf.NewBackend(langs, a.logger, nil)
	if err != nil {
		return nil, nil, err
	}
	f := a.conf.Factory(langs)
	builder, err := f.Builder(lang)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	j, err := a.conf.NewJudger(b, f, a.logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return client.New(j.WithBuilder(builder)), closeFn, nil
}

// sourceLanguage picks the language flag, then the file extension, then fallback
func (a *app) sourceLanguage(cmd *cli.Command, path string, fallback types.Language) (types.Language, error) {
	if l := cmd.String("lang"); l != "" {
		return types.Language(l), nil
	}
	langs, err := a.conf.Languages()
	if err != nil {
		return "", err
	}
	if l, ok := langs.ByFileName(path); ok {
		return l, nil
	}
	return fallback, nil
}

func (a *app) run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected a source file, got %d arguments", cmd.NArg())
	}
	path := cmd.Args().First()
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	stdin := cmd.String("stdin")
	if f := cmd.String("stdin-file"); f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		stdin = string(b)
	}
	lang, err := a.sourceLanguage(cmd, path, types.Language(a.conf.Language))
	if err != nil {
		return err
	}

	c, closeFn, err := a.newClient(lang)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintln(a.out, c.ExecuteProgram(ctx, string(source), stdin))
	return nil
}

func (a *app) test(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("expected an exercise file and a source file, got %d arguments", cmd.NArg())
	}
	ex, err := problem.Load(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	path := cmd.Args().Get(1)
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lang, err := a.sourceLanguage(cmd, path, ex.Lang())
	if err != nil {
		return err
	}

	c, closeFn, err := a.newClient(lang)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := c.RunTestCases(ctx, string(source), ex.TestCases)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", ex.Title, faint("("+string(lang)+")"))
	count := 0
	for i, r := range report.PerCase {
		if r.Passed {
			count++
			fmt.Fprintf(a.out, "%s case %d\n", passed("PASS"), i+1)
			continue
		}
		fmt.Fprintf(a.out, "%s case %d\n%s\n", failed("FAIL"), i+1, r.Message)
	}
	fmt.Fprintf(a.out, "%d/%d passed\n", count, len(report.PerCase))
	if !report.Passed {
		return errTestsFailed
	}
	return nil
}

func (a *app) exercises(_ context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = a.conf.ExerciseDir
	}
	if dir == "" {
		dir = defaultExerciseDir
	}
	var d problem.Difficulty
	if v := cmd.String("difficulty"); v != "" {
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return err
		}
	}
	list, err := problem.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range problem.NewSet(list).Filter(cmd.String("category"), d, cmd.String("query")) {
		fmt.Fprintf(a.out, "%3d  %-6s  %s %s\n", e.ID, e.Difficulty, e.Title, faint("["+e.Category+"]"))
	}
	return nil
}

func (a *app) languages(context.Context, *cli.Command) error {
	langs, err := a.conf.Languages()
	if err != nil {
		return err
	}
	for _, id := range langs.IDs() {
		l, _ := langs.Get(id)
		fmt.Fprintf(a.out, "%-12s %s\n", id, faint(describe(l)))
	}
	return nil
}

func describe(l language.Language) string {
	return fmt.Sprintf("judge0 %d, piston %s %s", l.Judge0ID, l.PistonLanguage, l.PistonVersion)
}
