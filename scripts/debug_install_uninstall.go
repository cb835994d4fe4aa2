// Debug helper for walking through install and two-phase uninstall against a
// throwaway PATH file.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/VoxDroid/amcsetup/internal/envstore"
	"github.com/VoxDroid/amcsetup/internal/install"
	"github.com/VoxDroid/amcsetup/internal/journal"
	"github.com/VoxDroid/amcsetup/internal/logging"
	"github.com/VoxDroid/amcsetup/internal/notify"
)

func main() {
	tmp, err := os.MkdirTemp("", "debuginstall")
	if err != nil {
		panic(err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	closeLog := logging.SetupLogger(2, "")
	defer closeLog()

	store := envstore.File{Path: filepath.Join(tmp, "PATH")}
	if err := store.Set(`C:\Windows;C:\Tools`); err != nil {
		panic(err)
	}
	j, err := journal.Open(filepath.Join(tmp, "journal.db"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = j.Close() }()

	var broadcasts int
	logger := logging.GetLogger("debug")
	m := install.New(install.Options{
		Store:    store,
		Journal:  j,
		Logger:   &logger,
		Notifier: notify.Func(func(context.Context, time.Duration) error { broadcasts++; return nil }),
	})
	dir := `C:\Program Files\ArduPilot Methodic Configurator`
	ctx := context.Background()

	r, err := m.AddPathEntry(ctx, dir)
	fmt.Println("install:", r.Trace(), "after:", r.After, "err:", err)
	r, err = m.AddPathEntry(ctx, dir)
	fmt.Println("install again:", r.Trace(), "err:", err)

	r, err = m.BeginUninstall(ctx, dir)
	fmt.Println("uninstall begin:", r.Trace(), "err:", err)
	r, err = m.FinishUninstall(ctx, dir)
	fmt.Println("uninstall finish:", r.Trace(), "after:", r.After, "err:", err)

	v, _ := store.Get()
	fmt.Println("final PATH:", v, "broadcasts:", broadcasts)

	events, _ := j.List(0)
	for _, e := range events {
		fmt.Printf(" - %s %s %s\n", e.Op, e.Outcome, e.InstallDir)
	}
}
