package mapping

import (
	"bufio"
	"fmt"
	"io"
)

// WriteTiny writes t as tiny v1 with the two given namespace names. Package
// and module entries have no tiny v1 form and are left out. Fields without
// descriptors cannot be expressed and make WriteTiny fail.
func WriteTiny(w io.Writer, t *Table, from, to string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "v1\t%s\t%s\n", from, to)
	for e := range t.All() {
		switch e.Kind {
		case KindClass:
			fmt.Fprintf(bw, "CLASS\t%s\t%s\n", e.Name, e.Target)
		case KindField:
			if e.Descriptor == "" {
				return fmt.Errorf("write tiny: %s has no descriptor", e.Source())
			}
			fmt.Fprintf(bw, "FIELD\t%s\t%s\t%s\t%s\n", e.Owner, e.Descriptor, e.Name, e.Target)
		case KindMethod:
			fmt.Fprintf(bw, "METHOD\t%s\t%s\t%s\t%s\n", e.Owner, e.Descriptor, e.Name, e.Target)
		}
	}
	return bw.Flush()
}
