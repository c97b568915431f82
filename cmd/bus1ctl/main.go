// Command bus1ctl is an interactive shell for inspecting and driving a
// bus1.Directory: create peers and objects, hand out handles, send custom
// messages, and watch delivery order as the engine resolves it.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"golang.org/x/term"

	bus1 "github.com/ailidani/bus1"
)

const version = "0.1.0"

const usage = `bus1ctl: a local peer/object/handle shell.

Usage:
    bus1ctl repl
    bus1ctl -h | --help
    bus1ctl --version

Options:
    -h --help     Show this screen.
    --version     Show version.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		panic(err)
	}

	if repl, _ := opts.Bool("repl"); repl {
		runREPL()
	}
}

// session holds the shell's view of the world: every peer/object/handle it
// has created, addressable by the short name the user typed.
type session struct {
	dir *bus1.Directory

	peers   map[string]*bus1.Peer
	objects map[string]*bus1.Object
	handles map[string]*bus1.Handle
}

func newSession() *session {
	return &session{
		dir:     bus1.NewDirectory(),
		peers:   make(map[string]*bus1.Peer),
		objects: make(map[string]*bus1.Object),
		handles: make(map[string]*bus1.Handle),
	}
}

func runREPL() {
	s := newSession()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err == nil {
			defer term.Restore(fd, oldState)
			runRawREPL(s, fd)
			return
		}
	}

	// Not an interactive terminal (piped input, tests): fall back to
	// plain line buffering, since there is no raw mode to edit against.
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "bus1> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			s.dispatch(line)
		}
		fmt.Fprint(os.Stdout, "bus1> ")
	}
}

// runRawREPL drives the shell with the terminal in raw mode: canonical
// line editing and echo are off, so every keystroke is read one byte at a
// time and hand-edited, backspace included, before dispatch sees a line.
func runRawREPL(s *session, fd int) {
	in := bufio.NewReader(os.Stdin)
	fmt.Fprint(os.Stdout, "bus1> \r\n")
	for {
		line, err := readRawLine(in)
		if err != nil {
			fmt.Fprint(os.Stdout, "\r\n")
			return
		}
		line = strings.TrimSpace(line)
		if line != "" {
			if line == "quit" || line == "exit" {
				fmt.Fprint(os.Stdout, "\r\n")
				return
			}
			s.dispatch(line)
		}
		fmt.Fprint(os.Stdout, "bus1> ")
	}
}

// readRawLine accumulates bytes until Enter, honoring backspace (erasing
// the previous character on screen) and Ctrl+D (EOF on an empty line).
// Ctrl+C aborts the line read entirely, same as a plain EOF.
func readRawLine(in *bufio.Reader) (string, error) {
	var line []byte
	for {
		b, err := in.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r', '\n':
			fmt.Fprint(os.Stdout, "\r\n")
			return string(line), nil
		case 3: // Ctrl+C
			return "", io.EOF
		case 4: // Ctrl+D
			if len(line) == 0 {
				return "", io.EOF
			}
		case 127, 8: // Backspace / Delete
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Fprint(os.Stdout, "\b \b")
			}
		default:
			line = append(line, b)
			os.Stdout.Write([]byte{b})
		}
	}
}

func (s *session) dispatch(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "peer":
		s.cmdPeer(args)
	case "object":
		s.cmdObject(args)
	case "handle":
		s.cmdHandle(args)
	case "send":
		s.cmdSend(args)
	case "recv":
		s.cmdRecv(args)
	case "quit", "exit":
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stdout, "unknown command %q\n", cmd)
	}
}

func (s *session) cmdPeer(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stdout, "usage: peer <name>")
		return
	}
	p := bus1.NewPeer()
	s.peers[args[0]] = p
	s.dir.Put(p.ID, p)
	fmt.Fprintf(os.Stdout, "peer %s -> %s\n", args[0], p.ID)
}

func (s *session) cmdObject(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stdout, "usage: object <name> <owner-peer>")
		return
	}
	owner, ok := s.peers[args[1]]
	if !ok {
		fmt.Fprintf(os.Stdout, "no such peer %q\n", args[1])
		return
	}
	o := bus1.NewObject(owner)
	s.objects[args[0]] = o
	s.dir.Put(o.ID, o)
	fmt.Fprintf(os.Stdout, "object %s -> %s\n", args[0], o.ID)
}

func (s *session) cmdHandle(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(os.Stdout, "usage: handle <name> <owner-peer> <object>")
		return
	}
	owner, ok := s.peers[args[1]]
	if !ok {
		fmt.Fprintf(os.Stdout, "no such peer %q\n", args[1])
		return
	}
	obj, ok := s.objects[args[2]]
	if !ok {
		fmt.Fprintf(os.Stdout, "no such object %q\n", args[2])
		return
	}
	h := bus1.NewHandle(owner, obj)
	s.handles[args[0]] = h
	s.dir.Put(h.ID, h)
	fmt.Fprintf(os.Stdout, "handle %s -> %s\n", args[0], h.ID)
}

func (s *session) cmdSend(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stdout, "usage: send <from-peer> <to-peer> <text...>")
		return
	}
	from, ok := s.peers[args[0]]
	if !ok {
		fmt.Fprintf(os.Stdout, "no such peer %q\n", args[0])
		return
	}
	to, ok := s.peers[args[1]]
	if !ok {
		fmt.Fprintf(os.Stdout, "no such peer %q\n", args[1])
		return
	}

	stage := bus1.NewStage(from)
	stage.AddCustom(to, nil, []byte(strings.Join(args[2:], " ")))
	if err := stage.Commit(); err != nil {
		fmt.Fprintf(os.Stdout, "commit failed: %v\n", err)
		return
	}
	fmt.Fprintln(os.Stdout, "sent")
}

func (s *session) cmdRecv(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stdout, "usage: recv <peer>")
		return
	}
	p, ok := s.peers[args[0]]
	if !ok {
		fmt.Fprintf(os.Stdout, "no such peer %q\n", args[0])
		return
	}
	m := p.Recv()
	if m == nil {
		fmt.Fprintln(os.Stdout, "<empty>")
		return
	}
	fmt.Fprintf(os.Stdout, "%s: %s\n", m.Kind(), string(m.Data))
}
