package main

import (
	"context"
	"os"

	"github.com/viant/afs"

	"procAssign/internal/loader"
)

var (
	dumpCmd = app.Command("dump", "вывести экземпляр (и назначение) в читаемом виде")

	dumpInstance   = dumpCmd.Arg("instance", "URL файла экземпляра").Required().String()
	dumpAssignment = dumpCmd.Arg("assignment", "URL файла назначения").String()
)

func runDump(ctx context.Context) error {
	store := loader.NewStore(afs.New())
	inst, err := store.LoadInstance(ctx, *dumpInstance)
	if err != nil {
		return err
	}
	if err := loader.DumpInstance(os.Stdout, inst); err != nil {
		return err
	}
	if *dumpAssignment == "" {
		return nil
	}
	a, err := store.LoadAssignment(ctx, *dumpAssignment, inst)
	if err != nil {
		return err
	}
	return loader.DumpAssignment(os.Stdout, a.Machines())
}
