package hid

// UsagePage sets the current usage page (Global, tag 0x0).
type UsagePage struct{ Page uint16 }

func (u UsagePage) appendTo(b []byte) ([]byte, error) {
	return appendShort(b, 0x0, ItemTypeGlobal, unsignedData(uint32(u.Page)))
}

// Usage adds a usage (Local, tag 0x0).
type Usage struct{ Usage uint16 }

func (u Usage) appendTo(b []byte) ([]byte, error) {
	return appendShort(b, 0x0, ItemTypeLocal, unsignedData(uint32(u.Usage)))
}

// UsageRange expands to Usage Minimum (Local, tag 0x1) and Usage Maximum (Local, tag 0x2).
type UsageRange struct{ Min, Max uint16 }

func (u UsageRange) appendTo(b []byte) ([]byte, error) {
	b, err := appendShort(b, 0x1, ItemTypeLocal, unsignedData(uint32(u.Min)))
	if err != nil {
		return nil, err
	}
	return appendShort(b, 0x2, ItemTypeLocal, unsignedData(uint32(u.Max)))
}

// LogicalRange expands to Logical Minimum (Global, tag 0x1) and Logical Maximum (Global, tag 0x2).
type LogicalRange struct{ Min, Max int32 }

func (l LogicalRange) appendTo(b []byte) ([]byte, error) {
	b, err := appendShort(b, 0x1, ItemTypeGlobal, signedData(l.Min))
	if err != nil {
		return nil, err
	}
	return appendShort(b, 0x2, ItemTypeGlobal, signedData(l.Max))
}

// ReportSize sets the field size in bits (Global, tag 0x7).
type ReportSize struct{ Bits uint8 }

func (r ReportSize) appendTo(b []byte) ([]byte, error) {
	return appendShort(b, 0x7, ItemTypeGlobal, []byte{r.Bits})
}

// ReportCount sets the number of fields (Global, tag 0x9).
type ReportCount struct{ Count uint16 }

func (r ReportCount) appendTo(b []byte) ([]byte, error) {
	return appendShort(b, 0x9, ItemTypeGlobal, unsignedData(uint32(r.Count)))
}

// Input emits an Input main item (tag 0x8).
type Input struct{ Flags MainFlags }

func (i Input) appendTo(b []byte) ([]byte, error) {
	return appendShort(b, 0x8, ItemTypeMain, []byte{uint8(i.Flags)})
}

// Collection opens a collection (Main, tag 0xA), encodes its children and
// closes it with End Collection (Main, tag 0xC).
type Collection struct {
	Kind  CollectionKind
	Items []Item
}

func (c Collection) appendTo(b []byte) ([]byte, error) {
	b, err := appendShort(b, 0xA, ItemTypeMain, []byte{uint8(c.Kind)})
	if err != nil {
		return nil, err
	}
	if b, err = appendItems(b, c.Items); err != nil {
		return nil, err
	}
	return appendShort(b, 0xC, ItemTypeMain, nil)
}
