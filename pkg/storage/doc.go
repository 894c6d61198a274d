// Package storage writes export artifacts to the output directory.
//
// Writes are atomic: content goes to a temporary file in the target
// directory and is renamed into place, so a failed run never leaves a
// truncated export behind. Unless the manager was created with overwrite
// enabled, an existing file with the same name is left untouched and Save
// returns ErrExists.
//
// Usage:
//
//	manager, err := storage.NewManager("exports", false)
//	if err != nil {
//	    return err
//	}
//	path, err := manager.SaveBytes("linkedin_posts_2025-01-01_to_2025-06-30.csv", data)
package storage
