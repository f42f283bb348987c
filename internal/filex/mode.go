package filex

import "os"

func fsMode(perm uint32) os.FileMode {
	if perm == 0 {
		return 0o600
	}
	return os.FileMode(perm)
}
