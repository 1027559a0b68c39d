package tui

// Color constants for the punch TUI theme
const (
	// Base Colors
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles, timer labels
	ColorSecondaryText = "#B1B8C7" // Details, history rows
	ColorDisabledText  = "#6D7383" // Disabled actions, empty values
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, panel borders
	ColorAccentBright = "#A78BFA" // Work clock

	// State Colors
	ColorError   = "#EF4444" // Failed actions
	ColorSuccess = "#22C55E" // Working, confirmations
	ColorWarning = "#F59E0B" // On break
)
