package launch

// Command returns the argv for one launch: the executable followed by the
// entry path as its only argument.
func Command(executable, path string) []string {
	return []string{executable, path}
}
