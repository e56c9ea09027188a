// Command fsmctl runs a small built-in demo machine and optionally dumps
// its state graph as a Graphviz dot file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	C "github.com/urfave/cli/v3"

	"github.com/bsandven/fsm"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &C.Command{
		Name:  "fsmctl",
		Usage: "Run and inspect declarative state machines",
		Commands: []*C.Command{
			demoCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func demoCommand() *C.Command {
	return &C.Command{
		Name:  "demo",
		Usage: "Build the boolean-toggle demo machine, flip its input, and report transitions",
		Flags: []C.Flag{
			&C.StringFlag{
				Name:  "dot-dir",
				Usage: "directory to write demo.dot into (overrides STATE_MACHINE_DOT_DIR)",
			},
		},
		Action: func(ctx context.Context, cmd *C.Command) error {
			m, err := buildDemoMachine()
			if err != nil {
				return err
			}

			m.OnStateEnter(func(name string, newID, oldID fsm.StateID) {
				fmt.Printf("enter %s (from %d to %d)\n", name, oldID, newID)
			})
			m.OnStateExit(func(name string, oldID, newID fsm.StateID) {
				fmt.Printf("exit %s (from %d to %d)\n", name, oldID, newID)
			})

			m.SetRunning(true)
			fmt.Println("initial state:", m.GetState())

			m.SetInput("power", fsm.BoolValue(true))
			fmt.Println("state after power=true:", m.GetState())

			m.SetInput("power", fsm.BoolValue(false))
			fmt.Println("state after power=false:", m.GetState())

			if dir := cmd.String("dot-dir"); dir != "" {
				if err := m.WriteDot(dir, "demo"); err != nil {
					return err
				}
				fmt.Println("wrote", dir+"/demo.dot")
			}
			return nil
		},
	}
}

func buildDemoMachine() (*fsm.Machine, error) {
	m, err := fsm.New([]fsm.StateDecl{{Value: 0, Name: "off"}, {Value: 1, Name: "on"}})
	if err != nil {
		return nil, err
	}
	if err := m.AddInput("power", fsm.TypeBool, fsm.BoolValue(false)); err != nil {
		return nil, err
	}
	if _, err := m.CreateDefaultCondition("power", fsm.EQ); err != nil {
		return nil, err
	}
	if err := m.AddEdge(0, 1, "power"); err != nil {
		return nil, err
	}
	if err := m.AddEdge(1, 0, "!power"); err != nil {
		return nil, err
	}
	return m, nil
}
