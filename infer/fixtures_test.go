package infer_test

import (
	"time"

	"entity-schema/descriptor"
	"entity-schema/entity"
)

const testPkg = "entity-schema/infer_test"

func id(name string) descriptor.TypeID {
	return descriptor.TypeID{PkgPath: testPkg, Name: name}
}

// Money stands in for a decimal number type.
type Money struct {
	units int64
}

type Address struct {
	entity.Embeddable

	City string
	Zip  *int32
}

type Customer struct {
	entity.Entity

	ID   int64
	Tags []string
	Home Address `table:",embedded"`
}

type Dimensions struct {
	Width  float64
	Height float64
	Label  string
}

type Audit struct {
	CreatedAt time.Time
	Revision  uint32
}

type Product struct {
	entity.Entity
	Audit

	SKU        string `table:"sku,notnull"`
	Price      Money  `table:"price,precision=10,scale=2"`
	Discount   *Money `table:",precision=5,scale=1"`
	Weight     *float32
	Size       Dimensions
	Attributes map[string]*int64
	Readings   [4]int16
	Checksum   [16]byte
	Payload    []byte
	TTL        time.Duration
	Counts     map[string]int32 `table:"counts,type=dict<string,int64>"`
	Cache      []string         `table:"-"`
	Scratch    string           `table:",transient"`
}

type Plain struct {
	Value int64
}

type BadEmbed struct {
	entity.Entity

	Meta Plain `table:",embedded"`
}

type WithChannel struct {
	entity.Entity

	ID      int64
	Updates chan int
}

type CycleA struct {
	entity.Entity
	entity.Embeddable

	Name string
	B    CycleB
}

type CycleB struct {
	entity.Embeddable

	A *CycleA
}

type Node struct {
	entity.Entity

	Name     string
	Children []*Node
}

type Ledger struct {
	entity.Entity

	Entries []Money
	Totals  map[string]Money
}

type Contact struct {
	entity.Entity

	FullName  string
	CreatedAt time.Time
	Billing   Address `table:",embedded"`
	Shipping  Address `table:",embedded"`
}

type RawColumns struct {
	entity.Entity

	ID      int64  `table:"id,type=int64"`
	Name    string `table:"name,type=string"`
	Code    string `table:"code,notnull,type=string"`
	Counter *int64 `table:"counter,type=int64"`
}

type RawOptional struct {
	entity.Entity

	Note string `table:"note,type=optional<string>"`
}

type Shipment struct {
	*entity.Entity
	*Audit

	ID int64
}

type Relay struct {
	entity.Entity
	*Relay

	Value string
}

type BadEmbeddedTag struct {
	entity.Entity

	ID   int64
	Home Address `table:",embedded,bogus"`
}

type BadTransientTag struct {
	entity.Entity

	ID    int64
	Cache []byte `table:",transient,precision=x"`
}
