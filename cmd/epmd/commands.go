package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dep2p/go-epmd/pkg/client"
)

// ============================================================================
//                              客户端命令
// ============================================================================

// runCommand 连接本机守护进程执行一条命令
func runCommand(ctx context.Context, f *cliFlags, port uint16, stdout, stderr io.Writer) int {
	c := client.NewLocal(port)

	var err error
	switch {
	case f.names:
		err = cmdNames(ctx, c, stdout)
	case f.dump:
		err = cmdDump(ctx, c, stdout)
	case f.kill:
		err = cmdKill(ctx, c, stdout)
	case f.isSet("stop"):
		err = cmdStop(ctx, c, f.stop, stdout)
	case f.isSet("port2"):
		err = cmdPort2(ctx, c, f.port2, stdout)
	}
	if err != nil {
		cliLogger.Debug("命令失败", "addr", c.Addr(), "err", err)
		fmt.Fprintf(stderr, "epmd: Cannot connect to local epmd: %v\n", err)
		return 1
	}
	return 0
}

func cmdNames(ctx context.Context, c *client.Client, w io.Writer) error {
	resp, err := c.Names(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "epmd: up and running on port %d with data:\n", resp.EpmdPort)
	for _, n := range resp.Nodes {
		fmt.Fprintf(w, "name %s at port %d\n", n.Name, n.Port)
	}
	return nil
}

func cmdDump(ctx context.Context, c *client.Client, w io.Writer) error {
	resp, err := c.Dump(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "epmd: up and running on port %d with data:\n", resp.EpmdPort)
	for _, n := range resp.Nodes {
		fmt.Fprintf(w, "name %s at port %d, creation %d, %s\n", n.Name, n.Port, n.Creation, n.State)
	}
	return nil
}

func cmdKill(ctx context.Context, c *client.Client, w io.Writer) error {
	ok, err := c.Kill(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(w, "Killed")
	} else {
		fmt.Fprintln(w, "Killing not allowed - living nodes in database.")
	}
	return nil
}

func cmdStop(ctx context.Context, c *client.Client, name string, w io.Writer) error {
	res, err := c.Stop(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, res)
	return nil
}

func cmdPort2(ctx context.Context, c *client.Client, name string, w io.Writer) error {
	node, found, err := c.Port2(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(w, "no such node: %s\n", name)
		return nil
	}
	fmt.Fprintf(w, "name %s at port %d, creation %d\n", node.Name, node.Port, node.Creation)
	return nil
}
