package scalar

// Tests load America/New_York; embed the zone database so they do not
// depend on the host's tzdata package.
import _ "time/tzdata"
