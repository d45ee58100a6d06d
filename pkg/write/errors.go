package write

// InvalidSymlinkPolicyError indicates that a Request set FollowLock without
// FollowOutput, violating the invariant that the more dangerous opt-in
// implies the weaker one.
type InvalidSymlinkPolicyError struct{}

func (e *InvalidSymlinkPolicyError) Error() string {
	return "symlink policy invalid: follow_lock requires follow_output"
}
