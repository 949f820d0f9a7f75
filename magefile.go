//go:build mage
// +build mage

package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kevinburke/ssh_config"
	"github.com/magefile/mage/mg" // mg contains helpful utility functions, like Deps
	"github.com/magefile/mage/sh"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Default target to run when none is specified
var Default = Build

type Remote mg.Namespace

const (
	binName   = "lsm"
	mainPkg   = "./cmd/lsm"
	remoteDir = "lsm"
)

var (
	buildDir       = "bin"
	remoteBuildDir = "bin/linux-arm64"
)

func ldflags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || commit == "" {
		commit = "none"
	}
	date, err := sh.Output("date", "-u", "+%Y-%m-%dT%H:%M:%SZ")
	if err != nil {
		date = "unknown"
	}
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}

// Regenerates the *_templ.go views from their .templ sources
func Generate() error {
	fmt.Println("Generating templ views...")
	return sh.RunV("templ", "generate")
}

// Builds lsm for the host platform
func Build() error {
	mg.Deps(Generate)
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(buildDir, binName), mainPkg)
}

// Runs the test suite
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cleans up the build directory
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(buildDir)
}

// Builds lsm for a remote linux/arm64 host, e.g. a Raspberry Pi
func (Remote) Build() error {
	mg.Deps(Generate)
	fmt.Println("Building for linux/arm64...")
	env := map[string]string{
		"GOOS":   "linux",
		"GOARCH": "arm64",
	}
	return sh.RunWithV(env, "go", "build", "-ldflags", ldflags(), "-o", filepath.Join(remoteBuildDir, binName), mainPkg)
}

// Builds and copies lsm to host. host may be an alias from ~/.ssh/config.
// Assumes you have SSH keys setup for the host.
func (Remote) Deploy(host string) error {
	mg.Deps(Remote.Build)
	t := resolveTarget(host)
	deployPath := path.Join("/home", t.user, remoteDir)
	fmt.Printf("Copying binary via SCP to %s:%s\n", t, deployPath)

	port := []string{}
	if t.port != "22" {
		port = []string{"-P", t.port}
	}

	// Create the deploy path if it doesn't exist
	err := sh.Run("ssh", "-p", t.port, t.String(), "mkdir -p", deployPath)
	if err != nil {
		return fmt.Errorf("failed to create deploy path on host: %w", err)
	}
	args := append(port, filepath.Join(remoteBuildDir, binName), fmt.Sprintf("%s:%s/%s", t, deployPath, binName))
	if err := sh.Run("scp", args...); err != nil {
		return fmt.Errorf("failed to deploy to host: %w", err)
	}
	return nil
}

// Deploys and runs `lsm serve` on host over SSH. Blocks until the server exits.
func (Remote) Start(host string) error {
	mg.Deps(mg.F(Remote.Deploy, host))
	t := resolveTarget(host)
	client, err := sshClient(t)
	if err != nil {
		return fmt.Errorf("failed to create SSH client: %w", err)
	}
	defer client.Close()
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	fmt.Println("--------------------------------")
	fmt.Println("RUNNING lsm serve")
	fmt.Println("--------------------------------")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := session.Start(path.Join("~", remoteDir, binName) + " serve"); err != nil {
		return fmt.Errorf("failed to start server on host: %w", err)
	}
	// handle signals
	go func() {
		sig := <-sigChan
		fmt.Println("Received signal:", sig)
		session.Signal(ssh.SIGTERM)
		// A second signal forces the issue.
		<-sigChan
		fmt.Println("Force killing server...")
		session.Signal(ssh.SIGKILL)
		session.Close()
		os.Exit(1)
	}()

	session.Stdout = os.Stdout
	session.Stderr = os.Stderr
	err = session.Wait()
	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			switch exitErr.ExitStatus() {
			case 143:
				fmt.Println("Server exited with SIGTERM")
				return nil
			case 137:
				fmt.Println("Server exited with SIGKILL")
				return nil
			default:
				return fmt.Errorf("server exited with unexpected status %d", exitErr.ExitStatus())
			}
		}
		return fmt.Errorf("failed to wait for server to exit: %w", err)
	}

	return nil
}

// target is an SSH destination after ~/.ssh/config lookup.
type target struct {
	host string
	user string
	port string
}

func (t target) String() string {
	return t.user + "@" + t.host
}

// resolveTarget applies HostName, User and Port from the SSH config to an
// alias. "user@host" overrides the configured user.
func resolveTarget(dest string) target {
	var t target
	if user, host, ok := strings.Cut(dest, "@"); ok {
		t.user, dest = user, host
	}
	t.host = dest
	if h := ssh_config.Get(dest, "HostName"); h != "" {
		t.host = h
	}
	if t.user == "" {
		t.user = ssh_config.Get(dest, "User")
	}
	if t.user == "" {
		t.user = os.Getenv("USER")
	}
	t.port = ssh_config.Get(dest, "Port")
	if t.port == "" {
		t.port = "22"
	}
	return t
}

func sshClient(t target) (*ssh.Client, error) {

	var authMethods []ssh.AuthMethod

	// Try to connect to SSH agent
	conn, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK"))
	if err == nil {
		agent := agent.NewClient(conn)
		signers, err := agent.Signers()
		if err == nil {
			signers = preferRSASHA2(signers)
			authMethods = append(authMethods, ssh.PublicKeys(signers...))
		}
	}

	if len(authMethods) == 0 {
		fmt.Println("No SSH keys found...")
	}

	config := &ssh.ClientConfig{
		User:            t.user,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Dev only.
	}
	addr := net.JoinHostPort(t.host, t.port)
	fmt.Println("Dialing SSH client to", addr)
	return ssh.Dial("tcp", addr, config)
}

func preferRSASHA2(signers []ssh.Signer) []ssh.Signer {
	var out []ssh.Signer
	for _, signer := range signers {
		if signer.PublicKey().Type() == ssh.KeyAlgoRSA {
			if algSigner, ok := signer.(ssh.AlgorithmSigner); ok {
				if mas, err := ssh.NewSignerWithAlgorithms(
					algSigner,
					[]string{
						ssh.KeyAlgoRSASHA256,
						ssh.KeyAlgoRSASHA512,
						ssh.KeyAlgoRSA,
					},
				); err == nil {
					out = append(out, mas)
					continue
				}
			}
		}
		out = append(out, signer)
	}
	return out
}
