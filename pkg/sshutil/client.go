package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Env overrides used by CI, where ~/.ssh is not set up.
const (
	UserEnv = "ADBDIAL_SSH_USER"
	KeyEnv  = "ADBDIAL_SSH_KEY"
)

// StrictHostKeyChecking controls known_hosts verification. Turning it off
// is insecure and only meant for throwaway lab relays.
var StrictHostKeyChecking = true

// Client is an SSH connection to a relay host.
type Client struct {
	*ssh.Client
	Host    string // alias or host as given
	Address string // resolved host:port
}

// Dial connects to host, which may be an ~/.ssh/config alias, a hostname,
// user@host, or host:port. Settings missing from the argument come from
// ~/.ssh/config.
func Dial(ctx context.Context, host string, timeout time.Duration) (*Client, error) {
	settings := resolveSettings(host, filepath.Join(homeDir(), ".ssh", "config"))

	config, err := clientConfig(settings, timeout)
	if err != nil {
		var structured *errors.Error
		if stderrors.As(err, &structured) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for relay '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := settings.address()
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach relay '%s' at %s", host, address),
			dialSuggestion(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var mismatch *HostKeyMismatchError
		if stderrors.As(err, &mismatch) {
			return nil, errors.New(errors.ErrSSH, mismatch.Error(), mismatch.Suggestion())
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with relay '%s' failed", host),
			handshakeSuggestion(err, settings.encryptedKeys))
	}

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the host as given to Dial.
func (c *Client) GetHost() string {
	return c.Host
}

type settings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string
}

func (s *settings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSettings splits user@host:port and fills the gaps from the ssh
// config at configPath. An explicit user wins over the config file.
func resolveSettings(host, configPath string) *settings {
	s := &settings{port: "22", user: currentUser()}

	explicitUser := false
	if at := strings.Index(host, "@"); at != -1 {
		s.user, host = host[:at], host[at+1:]
		explicitUser = true
	}
	if u := os.Getenv(UserEnv); u != "" && !explicitUser {
		s.user = u
	}

	if h, p, err := net.SplitHostPort(host); err == nil {
		host, s.port = h, p
	}
	s.hostname = host

	content, err := readConfigUntilMatch(configPath)
	if err != nil {
		return s
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return s
	}

	if v, _ := cfg.Get(host, "HostName"); v != "" {
		s.hostname = v
	}
	if v, _ := cfg.Get(host, "Port"); v != "" {
		s.port = v
	}
	if v, _ := cfg.Get(host, "User"); v != "" && !explicitUser {
		s.user = v
	}
	if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
		s.identityFile = expandPath(v)
	}
	return s
}

// readConfigUntilMatch returns the ssh config up to its first Match block,
// which ssh_config can't parse.
func readConfigUntilMatch(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var kept []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			break
		}
		kept = append(kept, line)
	}
	return []byte(strings.Join(kept, "\n")), nil
}

func clientConfig(s *settings, timeout time.Duration) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod

	tryKey := func(path string) {
		method, err := keyFileAuth(path)
		if err != nil {
			var enc *EncryptedKeyError
			if stderrors.As(err, &enc) {
				s.encryptedKeys = append(s.encryptedKeys, path)
			}
			return
		}
		auth = append(auth, method)
	}

	if a := agentAuth(); a != nil {
		auth = append(auth, a)
	}
	if key := os.Getenv(KeyEnv); key != "" {
		tryKey(key)
	}
	if s.identityFile != "" {
		tryKey(s.identityFile)
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		path := filepath.Join(homeDir(), ".ssh", name)
		if path != s.identityFile {
			tryKey(path)
		}
	}

	if len(auth) == 0 {
		if len(s.encryptedKeys) > 0 {
			return nil, errors.New(errors.ErrSSH,
				"Found SSH key(s) but they're encrypted: "+strings.Join(s.encryptedKeys, ", "),
				addKeysHint(s.encryptedKeys))
		}
		return nil, errors.New(errors.ErrSSH,
			"No SSH auth methods available for the relay",
			"Check your keys are loaded: ssh-add -l")
	}

	hostKey := ssh.InsecureIgnoreHostKey() //nolint:gosec // only when the user disabled checking
	if StrictHostKeyChecking {
		var err error
		hostKey, err = hostKeyCallback(filepath.Join(homeDir(), ".ssh", "known_hosts"))
		if err != nil {
			return nil, fmt.Errorf("load known_hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            s.user,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}, nil
}

var (
	agentOnce   sync.Once
	agentConn   net.Conn
	agentClient agent.ExtendedAgent
)

// agentAuth returns agent auth when SSH_AUTH_SOCK points at an agent with
// keys loaded. The agent connection is shared across dials.
func agentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})
	if agentClient == nil {
		return nil
	}

	// An empty agent placed first makes servers reject the later key methods.
	if signers, err := agentClient.Signers(); err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent closes the shared agent connection, if any.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

func keyFileAuth(path string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || bytes.Contains(key, []byte("ENCRYPTED")) {
			return nil, &EncryptedKeyError{Path: path}
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func hostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(knownHostsPath, nil, 0600); err != nil {
			return nil, err
		}
	}

	check, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := check(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   knownHostsPath,
				Want:         keyErr.Want,
			}
		}
		return err
	}, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func addKeysHint(keys []string) string {
	var sb strings.Builder
	sb.WriteString("Add your key(s) to the agent:\n")
	for _, key := range keys {
		if runtime.GOOS == "darwin" {
			fmt.Fprintf(&sb, "  ssh-add --apple-use-keychain %s\n", key)
		} else {
			fmt.Fprintf(&sb, "  ssh-add %s\n", key)
		}
	}
	return sb.String()
}

func dialSuggestion(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Is sshd running on the relay? Try: ssh <relay>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the relay. Check your network connection."
	case strings.Contains(msg, "timeout"):
		return "Connection timed out. The relay might be offline or firewalled."
	default:
		return "Make sure the relay is reachable: ping <relay>"
	}
}

func handshakeSuggestion(err error, encryptedKeys []string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		if len(encryptedKeys) > 0 {
			return addKeysHint(encryptedKeys)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(msg, "host key"):
		return "Host key issue. Connect once manually first: ssh <relay>"
	default:
		return "Something went wrong during SSH setup. Try: ssh <relay>"
	}
}

// EncryptedKeyError is returned for a passphrase-protected key file.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError is returned when the relay's key doesn't match known_hosts.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns the commands that fix the mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	known := make([]string, 0, len(e.Want))
	for _, k := range e.Want {
		known = append(known, k.Key.Type())
	}

	return fmt.Sprintf(
		"known_hosts has %s, the relay sent %s.\n"+
			"  Refresh the entry:\n"+
			"    ssh-keygen -R %s\n"+
			"    ssh-keyscan -t rsa,ecdsa,ed25519 %s >> %s",
		strings.Join(known, ", "), e.ReceivedType, host, host, e.KnownHosts)
}
