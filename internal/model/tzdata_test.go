package model

// Embedded zone data keeps the DST tests independent of the host.
import _ "time/tzdata"
