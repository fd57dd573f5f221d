package enveloprv1

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ---- encoding helpers ----

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.MarshalWire(nil))
}

// appendTime writes t as a google.protobuf.Timestamp; the zero time is omitted.
func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	raw, err := proto.Marshal(timestamppb.New(t))
	if err != nil {
		// Timestamp has only scalar fields; marshal cannot fail.
		panic(err)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, raw)
}

// ---- decoding helpers ----

type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func (f field) asString() string { return string(f.bytes) }
func (f field) asBool() bool { return protowire.DecodeBool(f.varint) }

func (f field) asTime(dst *time.Time) error {
	var ts timestamppb.Timestamp
	if err := proto.Unmarshal(f.bytes, &ts); err != nil {
		return err
	}
	if err := ts.CheckValid(); err != nil {
		return err
	}
	*dst = ts.AsTime()
	return nil
}

// eachField walks b and calls fn for every field. Unknown fields are skipped
// by the callers; fields with an unexpected wire type are rejected.
func eachField(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, _ = protowire.ConsumeVarint(b[:m])
		case protowire.BytesType:
			f.bytes, _ = protowire.ConsumeBytes(b[:m])
		}
		b = b[m:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// expect guards a known field against a mismatched wire type.
func expect(f field, typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)
	}
	return nil
}

// decode runs set only for fields whose wire type matches want[num].
func decode(b []byte, want map[protowire.Number]protowire.Type, set func(field) error) error {
	return eachField(b, func(f field) error {
		typ, ok := want[f.num]
		if !ok {
			return nil
		}
		if err := expect(f, typ); err != nil {
			return err
		}
		return set(f)
	})
}

const (
	bytesT  = protowire.BytesType
	varintT = protowire.VarintType
)

// ---- messages ----

func (m *User) MarshalWire(b []byte) []byte {
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.Username)
	return appendTime(b, 3, m.CreatedAt)
}

func (m *User) UnmarshalWire(b []byte) error {
	*m = User{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT, 2: bytesT, 3: bytesT}, func(f field) error {
		switch f.num {
		case 1:
			m.ID = f.asString()
		case 2:
			m.Username = f.asString()
		case 3:
			return f.asTime(&m.CreatedAt)
		}
		return nil
	})
}

func (m *Session) MarshalWire(b []byte) []byte {
	b = appendString(b, 1, m.Token)
	return appendTime(b, 2, m.ExpiresAt)
}

func (m *Session) UnmarshalWire(b []byte) error {
	*m = Session{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT, 2: bytesT}, func(f field) error {
		switch f.num {
		case 1:
			m.Token = f.asString()
		case 2:
			return f.asTime(&m.ExpiresAt)
		}
		return nil
	})
}

var fileFields = map[protowire.Number]protowire.Type{
	1: bytesT, 2: bytesT, 3: bytesT, 4: bytesT, 5: varintT, 6: bytesT, 7: bytesT, 8: bytesT,
}

func (m *File) MarshalWire(b []byte) []byte {
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.OwnerID)
	b = appendString(b, 3, m.Name)
	b = appendString(b, 4, m.Content)
	b = appendBool(b, 5, m.IsPublic)
	b = appendTime(b, 6, m.CreatedAt)
	b = appendTime(b, 7, m.UpdatedAt)
	for i := range m.SharedWith {
		b = appendMessage(b, 8, &m.SharedWith[i])
	}
	return b
}

func (m *File) UnmarshalWire(b []byte) error {
	*m = File{}
	return decode(b, fileFields, func(f field) error {
		switch f.num {
		case 1:
			m.ID = f.asString()
		case 2:
			m.OwnerID = f.asString()
		case 3:
			m.Name = f.asString()
		case 4:
			m.Content = f.asString()
		case 5:
			m.IsPublic = f.asBool()
		case 6:
			return f.asTime(&m.CreatedAt)
		case 7:
			return f.asTime(&m.UpdatedAt)
		case 8:
			var u User
			if err := u.UnmarshalWire(f.bytes); err != nil {
				return err
			}
			m.SharedWith = append(m.SharedWith, u)
		}
		return nil
	})
}

// marshalTwo and unmarshalTwo cover requests made of two string fields.
func marshalTwo(b []byte, a, c string) []byte {
	return appendString(appendString(b, 1, a), 2, c)
}

func unmarshalTwo(b []byte, a, c *string) error {
	*a, *c = "", ""
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT, 2: bytesT}, func(f field) error {
		if f.num == 1 {
			*a = f.asString()
		} else {
			*c = f.asString()
		}
		return nil
	})
}

func (m *RegisterRequest) MarshalWire(b []byte) []byte { return marshalTwo(b, m.Username, m.Password) }
func (m *RegisterRequest) UnmarshalWire(b []byte) error {
	return unmarshalTwo(b, &m.Username, &m.Password)
}

func (m *LoginRequest) MarshalWire(b []byte) []byte { return marshalTwo(b, m.Username, m.Password) }
func (m *LoginRequest) UnmarshalWire(b []byte) error {
	return unmarshalTwo(b, &m.Username, &m.Password)
}

func (m *CreateFileRequest) MarshalWire(b []byte) []byte { return marshalTwo(b, m.Name, m.Content) }
func (m *CreateFileRequest) UnmarshalWire(b []byte) error {
	return unmarshalTwo(b, &m.Name, &m.Content)
}

func (m *RenameFileRequest) MarshalWire(b []byte) []byte { return marshalTwo(b, m.ID, m.Name) }
func (m *RenameFileRequest) UnmarshalWire(b []byte) error {
	return unmarshalTwo(b, &m.ID, &m.Name)
}

func (m *UpdateFileContentRequest) MarshalWire(b []byte) []byte {
	return marshalTwo(b, m.ID, m.Content)
}
func (m *UpdateFileContentRequest) UnmarshalWire(b []byte) error {
	return unmarshalTwo(b, &m.ID, &m.Content)
}

func (m *ShareRequest) MarshalWire(b []byte) []byte { return marshalTwo(b, m.ID, m.Username) }
func (m *ShareRequest) UnmarshalWire(b []byte) error {
	return unmarshalTwo(b, &m.ID, &m.Username)
}

func (m *RefreshTokenRequest) MarshalWire(b []byte) []byte { return b }
func (m *RefreshTokenRequest) UnmarshalWire(b []byte) error {
	return eachField(b, func(field) error { return nil })
}

func (m *AuthResponse) MarshalWire(b []byte) []byte {
	b = appendMessage(b, 1, &m.Session)
	return appendMessage(b, 2, &m.User)
}

func (m *AuthResponse) UnmarshalWire(b []byte) error {
	*m = AuthResponse{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT, 2: bytesT}, func(f field) error {
		if f.num == 1 {
			return m.Session.UnmarshalWire(f.bytes)
		}
		return m.User.UnmarshalWire(f.bytes)
	})
}

func (m *ListFilesRequest) MarshalWire(b []byte) []byte {
	b = appendString(b, 1, m.SortBy)
	return appendBool(b, 2, m.Ascending)
}

func (m *ListFilesRequest) UnmarshalWire(b []byte) error {
	*m = ListFilesRequest{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT, 2: varintT}, func(f field) error {
		if f.num == 1 {
			m.SortBy = f.asString()
		} else {
			m.Ascending = f.asBool()
		}
		return nil
	})
}

// Repeated fields decode to a non-nil empty slice.

func (m *ListFilesResponse) MarshalWire(b []byte) []byte {
	for i := range m.Files {
		b = appendMessage(b, 1, &m.Files[i])
	}
	return b
}

func (m *ListFilesResponse) UnmarshalWire(b []byte) error {
	m.Files = []File{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT}, func(f field) error {
		var file File
		if err := file.UnmarshalWire(f.bytes); err != nil {
			return err
		}
		m.Files = append(m.Files, file)
		return nil
	})
}

func (m *UsersResponse) MarshalWire(b []byte) []byte {
	for i := range m.Users {
		b = appendMessage(b, 1, &m.Users[i])
	}
	return b
}

func (m *UsersResponse) UnmarshalWire(b []byte) error {
	m.Users = []User{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT}, func(f field) error {
		var u User
		if err := u.UnmarshalWire(f.bytes); err != nil {
			return err
		}
		m.Users = append(m.Users, u)
		return nil
	})
}

func (m *FileRequest) MarshalWire(b []byte) []byte { return appendString(b, 1, m.ID) }

func (m *FileRequest) UnmarshalWire(b []byte) error {
	*m = FileRequest{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT}, func(f field) error {
		m.ID = f.asString()
		return nil
	})
}

func (m *FileResponse) MarshalWire(b []byte) []byte { return appendMessage(b, 1, &m.File) }

func (m *FileResponse) UnmarshalWire(b []byte) error {
	*m = FileResponse{}
	return decode(b, map[protowire.Number]protowire.Type{1: bytesT}, func(f field) error {
		return m.File.UnmarshalWire(f.bytes)
	})
}

func (m *OKResponse) MarshalWire(b []byte) []byte { return appendBool(b, 1, m.OK) }

func (m *OKResponse) UnmarshalWire(b []byte) error {
	*m = OKResponse{}
	return decode(b, map[protowire.Number]protowire.Type{1: varintT}, func(f field) error {
		m.OK = f.asBool()
		return nil
	})
}
