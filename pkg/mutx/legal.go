package mutx

// LegalNotice provides license notices for mutx itself and its third-party
// dependencies.
const LegalNotice = `mutx

Licensed under the terms of the MIT License.


================================================================================
mutx depends on the following third-party software:
================================================================================

github.com/spf13/cobra - Apache License 2.0
github.com/pkg/errors - BSD 2-Clause License
github.com/fatih/color - MIT License
github.com/google/uuid - BSD 3-Clause License
github.com/dustin/go-humanize - MIT License
golang.org/x/sys - BSD 3-Clause License
golang.org/x/term - BSD 3-Clause License
`
