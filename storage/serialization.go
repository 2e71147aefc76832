// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// ObjectInfoMUS serializes ObjectInfo in the MUS format for storage in the
// metadata keyspace.
var ObjectInfoMUS = objectInfoSer{}

type objectInfoSer struct{}

func (objectInfoSer) Marshal(info ObjectInfo, bs []byte) (n int) {
	n = ord.String.Marshal(info.Container, bs)
	n += ord.String.Marshal(info.Name, bs[n:])
	n += varint.Int64.Marshal(info.Size, bs[n:])
	n += ord.String.Marshal(info.ContentType, bs[n:])
	n += varint.Int64.Marshal(int64(len(info.AccessLabels)), bs[n:])
	for _, label := range info.AccessLabels {
		n += ord.String.Marshal(label, bs[n:])
	}
	n += raw.TimeUnixMicro.Marshal(info.UploadedAt, bs[n:])
	return
}

func (objectInfoSer) Unmarshal(bs []byte) (info ObjectInfo, n int, err error) {
	var n1 int
	info.Container, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	info.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	info.Size, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	info.ContentType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count int64
	count, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := int64(0); i < count; i++ {
		var label string
		label, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		info.AccessLabels = append(info.AccessLabels, label)
	}
	info.UploadedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (objectInfoSer) Size(info ObjectInfo) (size int) {
	size = ord.String.Size(info.Container)
	size += ord.String.Size(info.Name)
	size += varint.Int64.Size(info.Size)
	size += ord.String.Size(info.ContentType)
	size += varint.Int64.Size(int64(len(info.AccessLabels)))
	for _, label := range info.AccessLabels {
		size += ord.String.Size(label)
	}
	size += raw.TimeUnixMicro.Size(info.UploadedAt)
	return
}

func (objectInfoSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count int64
	count, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := int64(0); i < count; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

// MarshalObjectInfo serializes an ObjectInfo to bytes.
func MarshalObjectInfo(info ObjectInfo) []byte {
	buf := make([]byte, ObjectInfoMUS.Size(info))
	ObjectInfoMUS.Marshal(info, buf)
	return buf
}

// UnmarshalObjectInfo deserializes an ObjectInfo from bytes.
func UnmarshalObjectInfo(data []byte) (ObjectInfo, error) {
	info, _, err := ObjectInfoMUS.Unmarshal(data)
	return info, err
}
