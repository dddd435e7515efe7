// Package dedup finds and removes duplicate images in a directory.
//
// A run lists the directory, fingerprints every image it can decode, groups
// files with equal fingerprints and resolves each group of two or more:
//
//   - if any member was posted on the trusted platform, the largest trusted
//     member is the anchor and re-posts no larger than it are deleted
//   - otherwise the largest member is kept and the rest are deleted
//
// File size stands in for fidelity. Members whose source is unknown are
// never deleted while an anchor exists.
//
// Every duplicate group and every deletion is written as one line to the
// audit writer, separate from the structured log.
//
// Usage:
//
//	hasher, _ := fingerprint.NewHasher(fingerprint.Average)
//	engine, err := dedup.New(dedup.Options{
//	    Fs:            afero.NewOsFs(),
//	    Fingerprinter: hasher,
//	    Audit:         os.Stdout,
//	})
//	if err != nil {
//	    return err
//	}
//	report, err := engine.Run(ctx, "/photos/inbox")
package dedup
