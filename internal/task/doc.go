// Package task talks to the REST task API and validates what it returns.
//
// The API exposes a single collection under {API_URL}/tasks/:
//
//	GET    /tasks/        list all tasks (JSON array)
//	POST   /tasks/        create a task from {"title": "..."}
//	PATCH  /tasks/{id}/   update {"completed": true|false}
//	DELETE /tasks/{id}/   remove a task
//
// A task on the wire looks like:
//
//	{"id": 1, "title": "Buy groceries", "completed": false}
//
// # Errors
//
// Every failed call returns a *Error. Its Kind tells transport failures
// (no response at all) apart from status failures (a response outside the
// 2xx range) and invalid responses (a list body that does not match the
// task list schema). A 404 matches ErrNotFound through errors.Is, and an
// empty title passed to Create matches ErrEmptyTitle without any request
// being sent.
//
// # Test isolation
//
// Isolation wraps the backend's /atomic/begin/, /atomic/setup/ and
// /atomic/rollback/ endpoints. They exist only on test backends.
package task
