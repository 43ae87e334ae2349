// Package manager implements the credential operations users see: add,
// get, delete and list.
//
// A Manager owns no data of its own. Every call goes straight to the
// configured store.Storage, so two managers over the same medium observe
// each other's writes.
//
//	m := manager.New(file.New(path), logger)
//	if err := m.AddPassword(ctx, "github", "s3cret"); errors.Is(err, manager.ErrDuplicateAccount) {
//	    // name already taken
//	}
package manager
