package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/rook-computer/panelframe/internal/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ssh(1) exits with 255 when the connection itself failed.
const sshTransportExit = 255

// ErrNoRemote is returned by NewRemote when no ssh host is configured.
var ErrNoRemote = errors.New("SSH_HOST not set")

// RemoteError reports that a remote command could not be delivered: the host
// was unreachable, authentication failed or the call timed out.
type RemoteError struct {
	Target string
	Err    error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("ssh %s: %v", e.Target, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemote returns a Runner that executes commands on the configured host.
// With a key file it speaks ssh natively; otherwise it shells out to the
// system ssh binary through local.
func NewRemote(s config.SSHSettings, local Runner) (Runner, error) {
	if s.Host == "" {
		return nil, ErrNoRemote
	}
	if s.KeyFile != "" {
		return NewNativeSSH(s)
	}
	if local == nil {
		local = ShellRunner{}
	}
	return &ExecSSH{
		Local:          local,
		Target:         s.Target(),
		Port:           s.Port,
		ConnectTimeout: s.ConnectTimeout,
		Timeout:        s.Timeout,
	}, nil
}

// ExecSSH runs commands through the ssh binary in batch mode, so it relies
// on the user's ssh config and agent for keys and host verification.
type ExecSSH struct {
	Local          Runner
	Target         string
	Port           int
	ConnectTimeout time.Duration
	Timeout        time.Duration
}

// Args returns the ssh argument vector for a remote command line.
func (e *ExecSSH) Args(command string) []string {
	args := []string{"-o", "BatchMode=yes"}
	if e.ConnectTimeout > 0 {
		secs := int(math.Ceil(e.ConnectTimeout.Seconds()))
		args = append(args, "-o", "ConnectTimeout="+strconv.Itoa(secs))
	}
	if e.Port > 0 && e.Port != config.DefaultSSHPort {
		args = append(args, "-p", strconv.Itoa(e.Port))
	}
	return append(args, e.Target, command)
}

func (e *ExecSSH) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	command := ShellJoin(cmd, args...)
	stdout, stderr, err := e.Local.Run(ctx, "ssh", e.Args(command)...)
	if err == nil {
		return stdout, stderr, nil
	}
	var ce *CommandError
	if errors.As(err, &ce) && ce.ExitCode != sshTransportExit {
		return stdout, stderr, &CommandError{Command: command, ExitCode: ce.ExitCode, Stderr: ce.Stderr}
	}
	return stdout, stderr, &RemoteError{Target: e.Target, Err: err}
}

// NativeSSH runs commands over golang.org/x/crypto/ssh with public key
// authentication, verifying the host against a known_hosts file.
type NativeSSH struct {
	Addr    string
	Config  *ssh.ClientConfig
	Timeout time.Duration
}

func NewNativeSSH(s config.SSHSettings) (*NativeSSH, error) {
	key, err := os.ReadFile(s.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key %s: %w", s.KeyFile, err)
	}
	hostKeys, err := knownhosts.New(s.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("load known hosts: %w", err)
	}
	name := s.User
	if name == "" {
		if u, uerr := user.Current(); uerr == nil {
			name = u.Username
		}
	}
	return &NativeSSH{
		Addr: net.JoinHostPort(s.Host, strconv.Itoa(s.Port)),
		Config: &ssh.ClientConfig{
			User:            name,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeys,
			Timeout:         s.ConnectTimeout,
		},
		Timeout: s.Timeout,
	}, nil
}

func (n *NativeSSH) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	command := ShellJoin(cmd, args...)

	dialer := net.Dialer{Timeout: n.Config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.Addr)
	if err != nil {
		return "", "", &RemoteError{Target: n.Addr, Err: err}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, chans, reqs, err := ssh.NewClientConn(conn, n.Addr, n.Config)
	if err != nil {
		conn.Close()
		return "", "", &RemoteError{Target: n.Addr, Err: n.cause(ctx, err)}
	}
	client := ssh.NewClient(c, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", "", &RemoteError{Target: n.Addr, Err: n.cause(ctx, err)}
	}
	defer session.Close()

	var outBuf, errBuf bytes.Buffer
	session.Stdout = &outBuf
	session.Stderr = &errBuf
	err = session.Run(command)
	if err == nil {
		return outBuf.String(), errBuf.String(), nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return outBuf.String(), errBuf.String(), &CommandError{
			Command:  command,
			ExitCode: exitErr.ExitStatus(),
			Stderr:   errBuf.String(),
		}
	}
	return outBuf.String(), errBuf.String(), &RemoteError{Target: n.Addr, Err: n.cause(ctx, err)}
}

// cause prefers the context error when the connection was torn down by a deadline.
func (n *NativeSSH) cause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
