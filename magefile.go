//go:build mage

// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/magefile/mage/mg" // mg contains helpful utility functions, like Deps
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "netfolio"
	modulePath = "github.com/penny-vault/netfolio"
	ginkgo     = "github.com/onsi/ginkgo/v2/ginkgo"
)

var ldflags = "-X " + modulePath + "/common.commitHash=$COMMIT_HASH -X " + modulePath + "/common.buildDate=$BUILD_DATE"

// allow user to override go executable by running as GOEXE=xxx mage ... on unix-like systems
var goexe = "go"

func init() {
	if exe := os.Getenv("GOEXE"); exe != "" {
		goexe = exe
	}
}

var Default = Build

// Build the netfolio binary
func Build() error {
	fmt.Println("Building...")
	return runWith(flagEnv(), goexe, "build", "-o", binaryName, "-ldflags", ldflags, buildFlags(), "-v", ".")
}

// Install netfolio into GOPATH/bin
func Install() error {
	return runWith(flagEnv(), goexe, "install", "-ldflags", ldflags, buildFlags(), ".")
}

func Uninstall() error {
	return sh.Run(goexe, "clean", "-i", ".")
}

// Clean up
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(binaryName)
	os.RemoveAll("coverage.out")
}

// Run tests and linters
func Check() {
	mg.Deps(Fmt, Vet)

	// the race detector saturates the CPUs so run it on its own
	mg.Deps(TestRace)
}

// Run the ginkgo suites of every package
func Test() error {
	fmt.Println("Ginkgo")
	return runCmd(nil, goexe, "run", ginkgo, "-r", "--randomize-all")
}

// Run the ginkgo suites with the race detector
func TestRace() error {
	fmt.Println("Ginkgo Race")
	return runCmd(nil, goexe, "run", ginkgo, "-r", "--randomize-all", "--race")
}

// Write a merged coverage profile to coverage.out and open it in the browser
func TestCover() error {
	fmt.Println("Ginkgo Cover")
	if err := runCmd(nil, goexe, "run", ginkgo, "-r", "--cover", "--coverprofile=coverage.out"); err != nil {
		return err
	}
	return sh.Run(goexe, "tool", "cover", "-html=coverage.out")
}

// Run gofmt linter
func Fmt() error {
	fmt.Println("Go Format")

	pkgs, err := netfolioPackages()
	if err != nil {
		return err
	}

	var unformatted []string
	for _, pkg := range pkgs {
		files, err := filepath.Glob(filepath.Join(pkg, "*.go"))
		if err != nil {
			return err
		}
		for _, f := range files {
			// gofmt doesn't exit with non-zero when it finds unformatted code
			// so look for output instead
			s, err := sh.Output("gofmt", "-l", f)
			if err != nil {
				return fmt.Errorf("running gofmt on %q: %w", f, err)
			}
			if s != "" {
				unformatted = append(unformatted, s)
			}
		}
	}

	if len(unformatted) > 0 {
		fmt.Println("The following files are not gofmt'ed:")
		fmt.Println(strings.Join(unformatted, "\n"))
		return errors.New("improperly formatted go files")
	}
	return nil
}

// Run golangci-lint
func Lint() error {
	fmt.Println("Go Lint")
	if _, err := sh.Exec(nil, os.Stdout, os.Stderr, "golangci-lint", "run", "./..."); err != nil {
		return fmt.Errorf("error running golangci-lint: %w", err)
	}
	return nil
}

// Run go vet linter
func Vet() error {
	fmt.Println("Go Vet")

	if err := sh.Run(goexe, "vet", "./..."); err != nil {
		return fmt.Errorf("error running go vet: %w", err)
	}
	return nil
}

// Helpers

func buildFlags() []string {
	if runtime.GOOS == "windows" {
		return []string{"-buildmode", "exe"}
	}
	return nil
}

func flagEnv() map[string]string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return map[string]string{
		"COMMIT_HASH": hash,
		"BUILD_DATE":  time.Now().Format("2006-01-02T15:04:05Z0700"),
	}
}

func runCmd(env map[string]string, cmd string, args ...interface{}) error {
	if mg.Verbose() {
		return runWith(env, cmd, args...)
	}
	output, err := sh.OutputWith(env, cmd, argsToStrings(args...)...)
	if err != nil {
		fmt.Fprint(os.Stderr, output)
	}

	return err
}

func runWith(env map[string]string, cmd string, inArgs ...interface{}) error {
	s := argsToStrings(inArgs...)
	return sh.RunWith(env, cmd, s...)
}

var (
	pkgs     []string
	pkgsInit sync.Once
)

func netfolioPackages() ([]string, error) {
	var err error
	pkgsInit.Do(func() {
		var s string
		s, err = sh.Output(goexe, "list", "./...")
		if err != nil {
			return
		}
		pkgs = strings.Split(s, "\n")
		for i := range pkgs {
			pkgs[i] = "." + strings.TrimPrefix(pkgs[i], modulePath)
		}
	})
	return pkgs, err
}

func argsToStrings(v ...interface{}) []string {
	var args []string
	for _, arg := range v {
		switch v := arg.(type) {
		case string:
			if v != "" {
				args = append(args, v)
			}
		case []string:
			if v != nil {
				args = append(args, v...)
			}
		default:
			panic("invalid type")
		}
	}

	return args
}
