package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"tabledump/internal/fixture"
)

func main() {
	dbPath := flag.String("db", "./data/sample.db", "output sqlite path")
	usersOnly := flag.Bool("users-only", false, "only create the users table")
	force := flag.Bool("force", false, "overwrite an existing file")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err == nil {
		if !*force {
			fmt.Printf("%s already exists (use -force to overwrite)\n", *dbPath)
			os.Exit(1)
		}
		if err := os.Remove(*dbPath); err != nil {
			fmt.Printf("remove %s failed: %v\n", *dbPath, err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		fmt.Printf("create data dir failed: %v\n", err)
		os.Exit(1)
	}

	stmts := fixture.Sample
	if *usersOnly {
		stmts = fixture.Users
	}
	if err := fixture.Create(*dbPath, stmts); err != nil {
		fmt.Printf("generate failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("sample database written to %s\n", *dbPath)
}
