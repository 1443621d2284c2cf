package console

import "fmt"

const banner = `   _____ __          __            __
  / ___// /_  ____ _/ /_____  ____/ /___ _      ______
  \__ \/ __ \/ __ '/ //_/ _ \/ __  / __ \ | /| / / __ \
 ___/ / / / / /_/ / ,< /  __/ /_/ / /_/ / |/ |/ / / / /
/____/_/ /_/\__,_/_/|_|\___/\__,_/\____/|__/|__/_/ /_/
`

// Banner writes the product banner and version. Suppressed in quiet mode.
func (p *Printer) Banner(version string) {
	if p.quiet {
		return
	}
	fmt.Fprint(p.out, p.Style(StepMajor, banner))
	fmt.Fprintf(p.out, "%s\n\n", p.Style(Quote, "shakedown "+version))
}
