package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/services/spreadsheet"
)

func (cli *commandLine) importStudents(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer func() { _ = file.Close() }()

	records, err := spreadsheet.ReadStudents(file)
	if err != nil {
		return err
	}
	res, err := cli.studentSvc.Import(ctx, records)
	if err != nil {
		return err
	}

	for _, f := range res.Failed {
		fmt.Fprintf(cli.out, "row %d (%s): %v\n", f.Row, f.Student.StudentCode, f.Err)
	}
	fmt.Fprintf(cli.out, "%d student(s) imported, %d failed\n", len(res.Created), len(res.Failed))
	return nil
}

func (cli *commandLine) exportTests(ctx context.Context, path string) error {
	tests, err := cli.testSvc.QueryAll(ctx)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	if err = spreadsheet.WriteTests(file, tests); err != nil {
		_ = file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return errors.Wrap(err, "closing file")
	}

	fmt.Fprintf(cli.out, "%d test(s) exported to %s\n", len(tests), path)
	return nil
}
