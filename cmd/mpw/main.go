// mpw derives site-specific credentials from a full name and a master
// secret, without ever storing either.
//
// Usage:
//
//	mpw [-u|-U full-name] [-t pw-type] [-c counter] [-a algorithm]
//	    [-s value] [-p purpose] [-C context] [-f|-F format] [-R 0|1]
//	    [-v|-q] site-name
//
// Example:
//
//	MP_FULLNAME="Robert Lee Mitchell" mpw masterpasswordapp.com
package main

import (
	"github.com/mpw-go/mpw/internal/cli"
)

func main() {
	cli.Execute()
}
