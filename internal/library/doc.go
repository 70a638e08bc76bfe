// Package library implements the borrowing rules of the classroom library.
//
// Borrow and Return run in a single database transaction so the available
// copy counter of a book always equals its total minus the number of open
// borrow records. Teacher-only queries check that the requester oversees the
// class being inspected.
//
// # Usage
//
//	svc := library.NewService(db.DB, cfg.Library, auditService)
//	record, err := svc.Borrow(ctx, user, bookID)
//	if errors.Is(err, library.ErrNoCopies) {
//		// show "no copies available"
//	}
package library
