// Package testdata holds fixtures shared by tests across packages.
package testdata

import (
	"strconv"

	"github.com/openarchive/authz/types"
)

func init() {
	loadEPersonsAndGroups()
}

var (
	EPersonGroups map[types.EPerson][]types.Group
	GroupEPersons map[types.Group][]types.EPerson
)

func loadEPersonsAndGroups() {
	EPersonGroups = make(map[types.EPerson][]types.Group)
	GroupEPersons = make(map[types.Group][]types.EPerson)
	for i := 0; i < 10; i++ {
		person := types.EPerson(strconv.Itoa(i))
		group2 := types.Group("2_" + strconv.Itoa(i%2))
		group3 := types.Group("3_" + strconv.Itoa(i%3))
		group5 := types.Group("5_" + strconv.Itoa(i%5))

		EPersonGroups[person] = []types.Group{group2, group3, group5}
		GroupEPersons[group2] = append(GroupEPersons[group2], person)
		GroupEPersons[group3] = append(GroupEPersons[group3], person)
		GroupEPersons[group5] = append(GroupEPersons[group5], person)
	}
}

// GroupInGroups nests the numbered groups under broader ones so tests can
// exercise transitive closure through more than one level.
var GroupInGroups = map[types.Group][]types.Group{
	types.Group("2_0"): {types.Group("even"), types.Group("divisible")},
	types.Group("3_0"): {types.Group("divisible")},
	types.Group("5_0"): {types.Group("divisible")},
}

// ArchiveTree is a small repository layout:
//
//	top community
//	└── sub community
//	    └── theses collection        also filed under top community
//	        └── thesis item
//	            └── original bundle
//	                └── thesis.pdf bitstream
var ArchiveTree = []struct {
	Child  types.Object
	Parent types.Object
}{
	{Child: types.Community("sub"), Parent: types.Community("top")},
	{Child: types.Collection("theses"), Parent: types.Community("sub")},
	{Child: types.Collection("theses"), Parent: types.Community("top")},
	{Child: types.Item("thesis"), Parent: types.Collection("theses")},
	{Child: types.Bundle("original"), Parent: types.Item("thesis")},
	{Child: types.Bitstream("thesis.pdf"), Parent: types.Bundle("original")},
}

// ReaderPolicies grant read access on the tree to a few subjects.
var ReaderPolicies = []types.PolicySpec{
	{Object: types.Item("thesis"), Action: types.Read, Subject: types.EPerson("0"), Type: types.TypeCustom},
	{Object: types.Item("thesis"), Action: types.Read, Subject: types.Group("3_0"), Type: types.TypeCustom},
	{Object: types.Bitstream("thesis.pdf"), Action: types.Read, Subject: types.Group("even"), Type: types.TypeCustom},
	{Object: types.Collection("theses"), Action: types.Read | types.Add, Subject: types.EPerson("1"), Type: types.TypeCustom},
}
