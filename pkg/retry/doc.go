// Package retry provides bounded retry with backoff for operations that can
// fail transiently, such as removing a file that another process briefly
// holds open.
//
//	err := retry.Do(func() error {
//		return fsys.Remove(path)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(),
//		Context:     ctx,
//		Logger:      log,
//	})
//
// A missing file (fs.ErrNotExist) and a cancelled context are never retried.
package retry
