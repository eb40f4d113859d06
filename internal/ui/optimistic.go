package ui

// Optimistic applies a local mutation before its remote counterpart
// confirms, restoring the pre-mutation snapshot when the remote call
// fails. The snapshot must be an independent copy; restore receives it
// unchanged. Used by the notes delete and the avatar update.
func Optimistic[S any](snapshot S, apply func(), attempt func() error, restore func(S)) error {
	apply()
	if err := attempt(); err != nil {
		restore(snapshot)
		return err
	}
	return nil
}
