// Command ecboot talks to an embedded controller bootloader over UDP:
// query its version, flash a firmware image, read raw memory, reset it.
//
// Usage:
//
//	ecboot -addr 192.168.7.10:7450 version
//	ecboot -addr 192.168.7.10:7450 update firmware.bin
//	ecboot -addr 192.168.7.10:7450 read 0x08000000 256
//	ecboot -addr 192.168.7.10:7450 reset
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ardelle/go-ecboot/messenger"
	"github.com/ardelle/go-ecboot/protocol"
	"github.com/ardelle/go-ecboot/updater"
)

var (
	addr      = flag.String("addr", "", "device address as host:port (required)")
	laddr     = flag.String("laddr", "", "local bind address")
	timeout   = flag.Duration("timeout", messenger.DefaultTimeout, "per-call response timeout")
	chunkSize = flag.Int("chunk", protocol.MaxWriteData, "update chunk size in bytes (1-1024)")
	noReset   = flag.Bool("no-reset", false, "do not reset the device after an update")
	verbose   = flag.Bool("v", false, "verbose logging")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s -addr host:port [flags] <version|update FILE|read ADDR LEN|reset>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	args := flag.Args()
	if *addr == "" || len(args) < 1 {
		usage()
	}

	m, err := messenger.New(*addr,
		messenger.WithLocalAddr(*laddr),
		messenger.WithTimeout(*timeout),
	)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer m.Close()

	switch args[0] {
	case "version":
		err = runVersion(m)
	case "update":
		if len(args) != 2 {
			usage()
		}
		err = runUpdate(m, args[1])
	case "read":
		if len(args) != 3 {
			usage()
		}
		err = runRead(m, args[1], args[2])
	case "reset":
		err = runReset(m)
	default:
		usage()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func runVersion(m *messenger.Messenger) error {
	info, err := m.GetVersion()
	if err != nil {
		return err
	}

	fmt.Printf("API version:        %d.%d\n", info.APIMajor, info.APIMinor)
	fmt.Printf("Bootloader version: %d.%d build %d\n",
		info.BootloaderMajor, info.BootloaderMinor, info.BootloaderBuild)
	if note := info.NoteString(); note != "" {
		fmt.Printf("Note:               %s\n", note)
	}
	return nil
}

func runUpdate(m *messenger.Messenger, path string) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	u := updater.New(m,
		updater.WithChunkSize(*chunkSize),
		updater.WithResetAfter(!*noReset),
		updater.WithProgressCallback(func(p updater.Progress) {
			fmt.Printf("\r[%s] %5.1f%% (%d/%d chunks, %d bytes)",
				p.Phase, p.Percentage, p.CurrentChunk, p.TotalChunks, p.BytesWritten)
			if p.Phase == updater.PhaseComplete {
				fmt.Println()
			}
		}),
	)

	return u.Update(context.Background(), image)
}

func runRead(m *messenger.Messenger, addrArg, lenArg string) error {
	address, err := strconv.ParseUint(addrArg, 0, 32)
	if err != nil {
		return fmt.Errorf("bad address %q: %w", addrArg, err)
	}
	length, err := strconv.ParseUint(lenArg, 0, 32)
	if err != nil {
		return fmt.Errorf("bad length %q: %w", lenArg, err)
	}

	data, err := m.ReadAddress(uint32(address), uint32(length))
	if err != nil {
		return err
	}

	fmt.Print(hex.Dump(data))
	return nil
}

func runReset(m *messenger.Messenger) error {
	start := time.Now()
	err := m.Reset()
	if err != nil {
		if messenger.IsTimeout(err) {
			// Expected: the device usually resets before replying.
			log.Debugf("no reset acknowledgement after %v", time.Since(start).Round(time.Millisecond))
			fmt.Println("reset sent (unconfirmed)")
			return nil
		}
		return err
	}

	fmt.Println("reset acknowledged")
	return nil
}
