package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/gradebook/core/school"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	studentSvc *school.StudentService
	testSvc    *school.TestService
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, version, redo, reset...)")
	fmt.Fprintln(cli.out, "  import-students -file FILE.xlsx - create the students listed in a spreadsheet")
	fmt.Fprintln(cli.out, "  export-tests -file FILE.xlsx - write all tests to a spreadsheet")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import-students", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "The xlsx file to import, with student_code, name and class_id columns.")
	importCmd.SetOutput(cli.out)

	exportCmd := flag.NewFlagSet("export-tests", flag.ContinueOnError)
	exportFile := exportCmd.String("file", "", "The xlsx file to write.")
	exportCmd.SetOutput(cli.out)

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "import-students":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(ctx, *importFile)
	case "export-tests":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportFile == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportTests(ctx, *exportFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
