package onenote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Scripts read their arguments from the environment so no value is ever
// spliced into PowerShell source.
const (
	envPath   = "NOTEGEST_ONENOTE_PATH"
	envPageID = "NOTEGEST_ONENOTE_PAGE_ID"
)

const scriptPrologue = `$ErrorActionPreference = 'Stop'
[Console]::OutputEncoding = [System.Text.Encoding]::UTF8
try {
  $one = New-Object -ComObject OneNote.Application
`

const scriptEpilogue = `
} catch {
  [Console]::Error.WriteLine($_.Exception.Message)
  exit 1
}
`

const (
	openHierarchyScript = scriptPrologue + `  $id = ''
  $one.OpenHierarchy($env:` + envPath + `, '', [ref]$id, 0)
` + scriptEpilogue

	// Scope 4 is hsPages: notebooks, sections and page entries.
	getHierarchyScript = scriptPrologue + `  $xml = ''
  $one.GetHierarchy('', 4, [ref]$xml)
  [Console]::Out.Write($xml)
` + scriptEpilogue

	getPageContentScript = scriptPrologue + `  $xml = ''
  $one.GetPageContent($env:` + envPageID + `, [ref]$xml)
  [Console]::Out.Write($xml)
` + scriptEpilogue
)

type runFunc func(ctx context.Context, name string, args, env []string) (stdout, stderr []byte, err error)

func execRun(ctx context.Context, name string, args, env []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// PowerShell drives OneNote by running one short PowerShell script per call.
type PowerShell struct {
	path string
	run  runFunc
}

// NewPowerShell returns an Automation backed by the given PowerShell
// executable ("powershell" when empty).
func NewPowerShell(path string) *PowerShell {
	if path == "" {
		path = "powershell"
	}
	return &PowerShell{path: path, run: execRun}
}

func (p *PowerShell) OpenHierarchy(ctx context.Context, path string) error {
	_, err := p.call(ctx, "OpenHierarchy", openHierarchyScript, envPath+"="+path)
	return err
}

func (p *PowerShell) GetHierarchy(ctx context.Context) ([]byte, error) {
	return p.call(ctx, "GetHierarchy", getHierarchyScript)
}

func (p *PowerShell) GetPageContent(ctx context.Context, pageID string) ([]byte, error) {
	return p.call(ctx, "GetPageContent", getPageContentScript, envPageID+"="+pageID)
}

func (p *PowerShell) call(ctx context.Context, op, script string, env ...string) ([]byte, error) {
	args := []string{"-NoProfile", "-NonInteractive", "-Command", script}
	stdout, stderr, err := p.run(ctx, p.path, args, env)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		msg := string(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return nil, newAutomationError(op, msg, err)
	}
	return stdout, nil
}
