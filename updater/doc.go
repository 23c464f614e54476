// Package updater drives a complete firmware update over a messenger
// client: start the session, stream the image in ordered chunks, close the
// session with the whole-image CRC32, optionally reset the device.
//
//	m, err := messenger.New("192.168.7.10:7450")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	image, err := os.ReadFile("firmware.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	u := updater.New(m,
//	    updater.WithProgressCallback(func(p updater.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	    updater.WithResetAfter(true),
//	)
//	if err := u.Update(context.Background(), image); err != nil {
//	    log.Fatal(err)
//	}
//
// The updater adds no retry logic: every chunk is sent exactly once, and
// any failure aborts the update immediately. A messenger.CRCMismatchError
// from the final stop means the device received a different byte sequence
// than the one sent.
package updater
