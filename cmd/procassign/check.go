package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/viant/afs"

	"procAssign/internal/loader"
	"procAssign/internal/procassign"
)

var (
	checkCmd = app.Command("check", "проверить допустимость назначения и посчитать его стоимость")

	checkInstance   = checkCmd.Arg("instance", "URL файла экземпляра").Required().String()
	checkAssignment = checkCmd.Arg("assignment", "URL файла назначения").Required().String()
	checkBaseline   = checkCmd.Flag("baseline", "URL исходного назначения для стоимости перемещений").String()
)

func runCheck(ctx context.Context) error {
	store := loader.NewStore(afs.New())
	inst, err := store.LoadInstance(ctx, *checkInstance)
	if err != nil {
		return err
	}
	a, err := store.LoadAssignment(ctx, *checkAssignment, inst)
	if err != nil {
		return err
	}
	baseline := a
	if *checkBaseline != "" {
		if baseline, err = store.LoadAssignment(ctx, *checkBaseline, inst); err != nil {
			return err
		}
	}

	if err := procassign.CheckAssignment(a); err != nil {
		fmt.Println("infeasible")
		printViolations(err)
		return err
	}
	fmt.Println("feasible")
	fmt.Printf("moving cost %d\nload cost %d\ncost %d\n",
		procassign.MovingCost(a, baseline),
		procassign.LoadCost(a),
		procassign.GlobalCost(a, baseline),
	)
	return nil
}

func printViolations(err error) {
	var infeasible *procassign.InfeasibleError
	if !errors.As(err, &infeasible) {
		return
	}
	for _, pe := range infeasible.Placements() {
		fmt.Printf("  process %4d on machine %d: %s\n", pe.Process, pe.Machine, pe.Constraint)
	}
}
