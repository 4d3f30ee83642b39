// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"

	"github.com/jeranaias/diagutil/internal/util"
)

// sFalse is the HRESULT CoInitializeEx returns when COM is already
// initialized on the thread. It still needs a matching CoUninitialize.
const sFalse = 0x00000001

// releaseGrace is how long Convert waits for the COM goroutine to release
// its handles after Excel has been terminated.
var releaseGrace = 5 * time.Second

// automationSlot admits one Excel instance at a time. The slot is held by
// the goroutine driving Excel, not by the caller, so a caller that gives up
// on a hung conversion cannot let a second instance start beside it.
var automationSlot = make(chan struct{}, 1)

// runAutomation drives Excel to save src as dst, sending Excel's process id
// on pidCh once known. Tests replace it.
var runAutomation = saveAsXLSX

// AutomationConverter converts workbooks by driving an installed Microsoft
// Excel through COM: Open, SaveAs xlOpenXMLWorkbook to a temp file, Close
// without saving, Quit.
//
// Every COM reference is released on every exit path. When ctx ends first,
// the Excel process started for the call is terminated.
type AutomationConverter struct {
	TempDir string
}

type automationResult struct {
	data []byte
	err  error
	kind util.ErrorKind
}

// Convert implements Converter.
func (a *AutomationConverter) Convert(ctx context.Context, path string) ([]byte, error) {
	if err := checkSource("convert", path); err != nil {
		return nil, err
	}
	src, err := filepath.Abs(path)
	if err != nil {
		return nil, util.NewFileError("convert", path, util.KindInvalid, err)
	}

	select {
	case automationSlot <- struct{}{}:
	case <-ctx.Done():
		return nil, util.NewFileError("convert", path, util.KindTimeout, ctx.Err())
	}

	target := tempXLSXPath(a.TempDir)
	pidCh := make(chan uint32, 1)
	done := make(chan automationResult, 1)
	go func() {
		defer func() { <-automationSlot }()
		defer os.Remove(target)

		var res automationResult
		if err := runAutomation(src, target, pidCh); err != nil {
			res.err, res.kind = err, util.KindExternal
		} else if res.data, err = os.ReadFile(target); err != nil {
			res.err, res.kind = err, util.KindIO
		}
		done <- res
	}()

	var pid uint32
	pids := (<-chan uint32)(pidCh)
	for {
		select {
		case pid = <-pids:
			pids = nil
		case res := <-done:
			if res.err != nil {
				return nil, util.NewFileError("convert", path, res.kind, res.err)
			}
			return res.data, nil
		case <-ctx.Done():
			abandon(path, pid, pids, done)
			return nil, util.NewFileError("convert", path, util.KindTimeout, ctx.Err())
		}
	}
}

// abandon terminates the Excel process of a conversion whose caller gave up,
// including one whose process id arrives late, and waits up to releaseGrace
// for the COM goroutine to finish. The goroutine keeps the automation slot
// until it does.
func abandon(path string, pid uint32, pids <-chan uint32, done <-chan automationResult) {
	grace := time.NewTimer(releaseGrace)
	defer grace.Stop()

	for {
		if pid != 0 {
			if err := terminateProcess(pid); err != nil {
				log.Error().Err(err).Uint32("pid", pid).Msg("terminating excel failed")
			} else {
				log.Warn().Uint32("pid", pid).Str("path", path).Msg("terminated excel after timeout")
			}
			pid = 0
		}
		select {
		case pid = <-pids:
			pids = nil
		case <-done:
			return
		case <-grace.C:
			log.Warn().Str("path", path).Msg("excel automation still running; next conversion waits for it")
			return
		}
	}
}

// saveAsXLSX runs the COM conversation on a locked OS thread. Deferred
// calls run in reverse, so the workbook closes before Excel quits and every
// interface is released before COM is uninitialized.
func saveAsXLSX(src, dst string, pidCh chan<- uint32) (err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return fmt.Errorf("initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("Excel.Application")
	if err != nil {
		return fmt.Errorf("start excel: %w", err)
	}
	defer unknown.Release()

	excel, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("excel dispatch: %w", err)
	}
	defer excel.Release()
	defer func() {
		if _, qerr := oleutil.CallMethod(excel, "Quit"); qerr != nil && err == nil {
			err = fmt.Errorf("quit excel: %w", qerr)
		}
	}()

	if hwnd, herr := oleutil.GetProperty(excel, "Hwnd"); herr == nil {
		pidCh <- windowProcessID(uintptr(hwnd.Val))
		hwnd.Clear()
	}
	if _, err := oleutil.PutProperty(excel, "Visible", false); err != nil {
		return fmt.Errorf("hide excel: %w", err)
	}
	if _, err := oleutil.PutProperty(excel, "DisplayAlerts", false); err != nil {
		return fmt.Errorf("silence excel: %w", err)
	}

	workbooksVar, err := oleutil.GetProperty(excel, "Workbooks")
	if err != nil {
		return fmt.Errorf("workbooks: %w", err)
	}
	workbooks := workbooksVar.ToIDispatch()
	defer workbooks.Release()

	bookVar, err := oleutil.CallMethod(workbooks, "Open", src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	book := bookVar.ToIDispatch()
	defer book.Release()
	defer oleutil.CallMethod(book, "Close", false)

	if _, err := oleutil.CallMethod(book, "SaveAs", dst, xlOpenXMLWorkbook); err != nil {
		return fmt.Errorf("save as %s: %w", dst, err)
	}
	return nil
}

// windowProcessID returns the process owning a window, or 0.
func windowProcessID(hwnd uintptr) uint32 {
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(hwnd), &pid); err != nil {
		return 0
	}
	return pid
}

func terminateProcess(pid uint32) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, pid)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.TerminateProcess(h, 1)
}
