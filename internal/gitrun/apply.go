package gitrun

import "context"

// ApplyOptions controls how a patch file is replayed onto the working tree.
type ApplyOptions struct {
	// Reverse replays the patch backwards (simulating removal).
	Reverse bool
	// Check only validates applicability without touching the tree.
	Check bool
}

// Apply runs `git apply [--check] [--reverse] <patchFile>` in the runner's
// repository. A failure surfaces as an *ExecError.
func (it *Runner) Apply(ctx context.Context, patchFile string, opts ApplyOptions) error {
	args := []string{"apply"}
	if opts.Check {
		args = append(args, "--check")
	}
	if opts.Reverse {
		args = append(args, "--reverse")
	}
	args = append(args, patchFile)

	_, err := it.Run(ctx, args...)
	return err
}
