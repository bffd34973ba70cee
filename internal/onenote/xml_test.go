package onenote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hierarchyXML = `<?xml version="1.0"?>
<one:Notebooks xmlns:one="http://schemas.microsoft.com/office/onenote/2013/onenote">
  <one:Notebook name="Accounts" nickname="Accounts" ID="{NB1}" path="C:\notes\Accounts">
    <one:Section name="2023" ID="{S1}" path="C:\notes\Accounts\2023.one">
      <one:Page ID="{P1}" name="Jones" dateTime="2023-01-02T00:00:00.000Z"/>
      <one:Page ID="{P2}" name="Smith"/>
    </one:Section>
    <one:SectionGroup name="Archive" ID="{G1}">
      <one:Section name="2019" ID="{S2}">
        <one:Page ID="{P3}" name="Old"/>
      </one:Section>
    </one:SectionGroup>
    <one:SectionGroup name="OneNote_RecycleBin" ID="{G2}" isRecycleBin="true">
      <one:Section name="Deleted Pages" ID="{S3}" isInRecycleBin="true">
        <one:Page ID="{P4}" name="Gone" isInRecycleBin="true"/>
      </one:Section>
    </one:SectionGroup>
    <one:Section name="Empty" ID="{S4}"/>
  </one:Notebook>
  <one:Notebook name="Personal" ID="{NB2}">
    <one:Section name="Misc" ID="{S5}">
      <one:Page ID="{P5}" name="Todo"/>
    </one:Section>
  </one:Notebook>
</one:Notebooks>`

func TestParseHierarchy(t *testing.T) {
	h, err := ParseHierarchy([]byte(hierarchyXML))
	require.NoError(t, err)
	require.Len(t, h.Notebooks, 2)

	acc := h.Notebooks[0]
	assert.Equal(t, "Accounts", acc.Name)
	assert.Equal(t, "{NB1}", acc.ID)
	require.Len(t, acc.Sections, 3, "section groups are flattened, recycle bin skipped")
	assert.Equal(t, "2023", acc.Sections[0].Name)
	assert.Equal(t, "2019", acc.Sections[1].Name)
	assert.Equal(t, "Empty", acc.Sections[2].Name)
	require.Len(t, acc.Sections[0].Pages, 2)
	assert.Equal(t, "{P1}", acc.Sections[0].Pages[0].ID)
	assert.Equal(t, "Jones", acc.Sections[0].Pages[0].Name)
	assert.Empty(t, acc.Sections[2].Pages)

	assert.Equal(t, "Personal", h.Notebooks[1].Name)
	assert.Equal(t, 4, h.PageCount())
}

func TestParseHierarchy_ByteOrderMarkAndEncoding(t *testing.T) {
	data := "\xef\xbb\xbf" + `<?xml version="1.0" encoding="utf-16"?>
<Notebooks><Notebook name="N"><Section name="S"><Page ID="p" name="P"/></Section></Notebook></Notebooks>`
	h, err := ParseHierarchy([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, 1, h.PageCount())
}

func TestParseHierarchy_SectionRoot(t *testing.T) {
	h, err := ParseHierarchy([]byte(`<Section name="Loose"><Page ID="p1" name="A"/></Section>`))
	require.NoError(t, err)
	require.Len(t, h.Notebooks, 1)
	assert.Equal(t, "Loose", h.Notebooks[0].Sections[0].Name)
	assert.Equal(t, 1, h.PageCount())
}

func TestParseHierarchy_Malformed(t *testing.T) {
	_, err := ParseHierarchy([]byte(`<Notebooks><Notebook name="x">`))
	assert.Error(t, err)
}

const pageXML = `<?xml version="1.0"?>
<one:Page xmlns:one="http://schemas.microsoft.com/office/onenote/2013/onenote" ID="{P1}" name="Jones">
  <one:Title><one:OE><one:T><![CDATA[Jones renewal]]></one:T></one:OE></one:Title>
  <one:Outline>
    <one:OEChildren>
      <one:OE><one:T><![CDATA[<span style='font-weight:bold'>Underwriter:</span> Acme &amp; Sons]]></one:T></one:OE>
      <one:OE><one:T><![CDATA[]]></one:T></one:OE>
      <one:OE><one:T><![CDATA[Effective: 01/02/2023]]></one:T></one:OE>
      <one:OE><one:Image><one:Data>AAAA</one:Data></one:Image></one:OE>
    </one:OEChildren>
  </one:Outline>
</one:Page>`

func TestPageText(t *testing.T) {
	text, err := PageText([]byte(pageXML))
	require.NoError(t, err)
	assert.Equal(t, "Jones renewal\nUnderwriter: Acme & Sons\nEffective: 01/02/2023", text)
}

func TestPageText_NoTextElements(t *testing.T) {
	text, err := PageText([]byte(`<Page name="blank"><Outline/></Page>`))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain", StripHTML("plain"))
	assert.Equal(t, "a\nb", StripHTML("a<br/>b"))
	assert.Equal(t, "Tom & Jerry's", StripHTML("<b>Tom</b> &amp; Jerry&#39;s"))
}

func TestParsePage_Name(t *testing.T) {
	name, text, err := ParsePage([]byte(pageXML))
	require.NoError(t, err)
	assert.Equal(t, "Jones", name)
	assert.Contains(t, text, "Underwriter: Acme & Sons")
}
