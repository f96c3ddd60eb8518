package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconTable   = "\U000F04EB" // 󰓫
	IconFileCSV = "\uf1c3"     // 
	IconChart   = "\U000F0127" // 󰄧
	IconPencil  = "\U000F03EB" // 󰏫
)

// Visibility markers used by the column picker.
var (
	IconVisible = "[x]"
	IconHidden  = "[ ]"
)

// Notification icons.
var (
	IconNotifyInfo    = "\uf05a" // 
	IconNotifyWarning = "\uf071" // 
	IconNotifyError   = "\uf057" // 
)
