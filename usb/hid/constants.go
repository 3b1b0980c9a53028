package hid

// Usage pages, per HID Usage Tables.
const (
	UsagePageGenericDesktop uint16 = 0x01
	UsagePageSimulation     uint16 = 0x02
	UsagePageButton         uint16 = 0x09
)

// Generic Desktop usages.
const (
	UsageJoystick uint16 = 0x04
	UsageGamePad  uint16 = 0x05
	UsageX        uint16 = 0x30
	UsageY        uint16 = 0x31
	UsageZ        uint16 = 0x32
	UsageRx       uint16 = 0x33
	UsageRy       uint16 = 0x34
	UsageRz       uint16 = 0x35
	UsageSlider   uint16 = 0x36
	UsageDial     uint16 = 0x37
)

// CollectionKind values.
type CollectionKind uint8

const (
	CollectionPhysical    CollectionKind = 0x00
	CollectionApplication CollectionKind = 0x01
	CollectionLogical     CollectionKind = 0x02
)

// MainFlags are the Input/Output/Feature bit flags.
type MainFlags uint8

const (
	MainData  MainFlags = 0x00
	MainConst MainFlags = 0x01
	MainArray MainFlags = 0x00
	MainVar   MainFlags = 0x02
	MainAbs   MainFlags = 0x00
	MainRel   MainFlags = 0x04
)
